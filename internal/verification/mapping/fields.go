package mapping

// Field names one canonical identity-document field.
type Field string

const (
	FieldDocumentNumber Field = "document_number"
	FieldName           Field = "name"
	FieldBirthday       Field = "birthday"
	FieldBirthPlace     Field = "birth_place"
	FieldSex            Field = "sex"
	FieldAddress        Field = "address"
	FieldRTRW           Field = "rt_rw"
	FieldVillage        Field = "village"
	FieldDistrict       Field = "district"
	FieldCity           Field = "city"
	FieldProvince       Field = "province"
	FieldReligion       Field = "religion"
	FieldMaritalStatus  Field = "marital_status"
	FieldOccupation     Field = "occupation"
	FieldNationality    Field = "nationality"
	FieldExpiryDate     Field = "expiry_date"
)

// cardPath is where the structured verification flow nests the recognized
// card: a card-verify result list of one, holding the normalized card info.
const cardPath = "CardVerifyResults.0.NormalCardInfo.IndonesiaIDCard."

// candidates declares, per canonical field, the ordered lookup paths across
// the known payload shapes. Order encodes precedence and is fixed:
//  1. the structured nested card result,
//  2. the flat intl OCR-draft keys,
//  3. the local-OCR shape with Indonesian lower-snake keys.
//
// The table replaces the ad hoc chained fallbacks the provider integrations
// accumulated; adding a new spelling means adding a row here, nothing else.
var candidates = map[Field][]string{
	// The document number is never invented from unrelated fields; only the
	// spellings that actually carry it are listed.
	FieldDocumentNumber: {cardPath + "NIK", "NIK", "LicenseNumber", "nik"},
	FieldName:           {cardPath + "FullName", "FullName", "Name", "nama"},
	FieldBirthday:       {cardPath + "Birthday", "Birthday", "tanggal_lahir"},
	FieldBirthPlace:     {cardPath + "BirthPlace", "BirthPlace", "tempat_lahir"},
	FieldSex:            {cardPath + "Sex", "Sex", "jenis_kelamin"},
	FieldAddress:        {cardPath + "Address", "Address", "FormattedAddress", "alamat"},
	FieldRTRW:           {cardPath + "RTRW", "RTRW", "rt_rw"},
	FieldVillage:        {cardPath + "Village", "Village", "kelurahan"},
	FieldDistrict:       {cardPath + "District", "District", "kecamatan"},
	FieldCity:           {cardPath + "City", "City", "kota"},
	FieldProvince:       {cardPath + "Province", "Province", "provinsi"},
	FieldReligion:       {cardPath + "Religion", "Religion", "agama"},
	FieldMaritalStatus:  {cardPath + "MaritalStatus", "MaritalStatus", "status_perkawinan"},
	FieldOccupation:     {cardPath + "Occupation", "Occupation", "pekerjaan"},
	FieldNationality:    {cardPath + "Nationality", "Nationality", "kewarganegaraan"},
	FieldExpiryDate:     {cardPath + "ExpiryDate", "ExpiryDate", "DueDate", "berlaku_hingga"},
}

// Resolver answers "what is the value of this canonical field" across one or
// more raw payload objects. Sources are tried per candidate path in order, so
// a higher-precedence path in a later source still loses to a lower-precedence
// path match in no source (precedence is by path first, then by source).
type Resolver struct {
	sources []Payload
}

// NewResolver builds a resolver over the given payloads. Zero payloads are
// skipped, so callers can pass optional sources unconditionally.
func NewResolver(sources ...Payload) *Resolver {
	r := &Resolver{}
	for _, s := range sources {
		if !s.IsZero() {
			r.sources = append(r.sources, s)
		}
	}
	return r
}

// String returns the first non-empty string value for the field, walking each
// candidate path across all sources. Returns "" when every candidate is
// exhausted. Trimming happens in Payload.String; no other coercion occurs.
func (r *Resolver) String(field Field) string {
	for _, path := range candidates[field] {
		for _, src := range r.sources {
			if v := src.String(path); v != "" {
				return v
			}
		}
	}
	return ""
}

// Number returns the first present numeric value for the given paths. Zero is
// present; only missing/null/unparseable candidates are skipped. This is the
// field-type-aware emptiness check: score fields must not treat a legitimate
// 0 as absent.
func (r *Resolver) Number(paths ...string) (float64, bool) {
	for _, path := range paths {
		for _, src := range r.sources {
			if v, ok := src.Number(path); ok {
				return v, true
			}
		}
	}
	return 0, false
}
