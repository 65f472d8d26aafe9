package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ekyc-gateway/internal/verification"
	"ekyc-gateway/pkg/sentinel"
)

// PostgresStore persists verification records in PostgreSQL. Every operation
// is a single statement; there is no cross-operation transaction wrapping.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `
	id, user_id, sdk_token, request_id, verification_status,
	ocr_data, liveness_score, similarity_score,
	document_number, name, birth_place, birth_date, gender, address,
	rt_rw, village, district, city, province, religion, marital_status,
	occupation, nationality, expiry_date,
	raw_response, error_message, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, rec *verification.Record) (int64, error) {
	query := `
		INSERT INTO ekyc_verifications (
			user_id, sdk_token, request_id, verification_status,
			ocr_data, liveness_score, similarity_score,
			document_number, name, birth_place, birth_date, gender, address,
			rt_rw, village, district, city, province, religion, marital_status,
			occupation, nationality, expiry_date,
			raw_response, error_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		rec.UserID,
		rec.SDKToken,
		nullString(rec.RequestID),
		string(rec.Status),
		nullBytes(rec.OCRData),
		rec.LivenessScore,
		rec.SimilarityScore,
		nullString(rec.DocumentNumber),
		nullString(rec.Name),
		nullString(rec.BirthPlace),
		nullDate(rec.BirthDate),
		nullString(rec.Gender),
		nullString(rec.Address),
		nullString(rec.RTRW),
		nullString(rec.Village),
		nullString(rec.District),
		nullString(rec.City),
		nullString(rec.Province),
		nullString(rec.Religion),
		nullString(rec.MaritalStatus),
		nullString(rec.Occupation),
		nullString(rec.Nationality),
		nullDate(rec.ExpiryDate),
		nullBytes(rec.RawResponse),
		nullString(rec.ErrorMessage),
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert verification record: %w", err)
	}
	return rec.ID, nil
}

func (s *PostgresStore) UpdateByToken(ctx context.Context, sdkToken string, upd verification.StatusUpdate) (int64, error) {
	// All rows matching the token are updated; terminal rows are skipped
	// unless the caller forces the write.
	query := `
		UPDATE ekyc_verifications
		SET verification_status = $1,
			liveness_score = COALESCE($2, liveness_score),
			similarity_score = COALESCE($3, similarity_score),
			raw_response = COALESCE($4, raw_response),
			error_message = COALESCE($5, error_message),
			updated_at = now()
		WHERE sdk_token = $6
			AND (verification_status NOT IN ('success', 'failed') OR $7)
	`
	res, err := s.db.ExecContext(ctx, query,
		string(upd.Status),
		upd.LivenessScore,
		upd.SimilarityScore,
		nullBytes(upd.RawResponse),
		upd.ErrorMessage,
		sdkToken,
		upd.Force,
	)
	if err != nil {
		return 0, fmt.Errorf("update verification by token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update verification by token: rows affected: %w", err)
	}
	return affected, nil
}

func (s *PostgresStore) GetLatestByUser(ctx context.Context, userID string) (*verification.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM ekyc_verifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get latest verification for user: %w", err)
	}
	return rec, nil
}

func scanRecord(row *sql.Row) (*verification.Record, error) {
	var (
		rec        verification.Record
		requestID  sql.NullString
		status     string
		ocrData    []byte
		liveness   sql.NullFloat64
		similarity sql.NullFloat64
		text       [14]sql.NullString
		birthDate  sql.NullTime
		expiryDate sql.NullTime
		rawResp    []byte
		errMsg     sql.NullString
	)

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.SDKToken, &requestID, &status,
		&ocrData, &liveness, &similarity,
		&text[0], &text[1], &text[2], &birthDate, &text[3], &text[4],
		&text[5], &text[6], &text[7], &text[8], &text[9], &text[10], &text[11],
		&text[12], &text[13], &expiryDate,
		&rawResp, &errMsg, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.RequestID = requestID.String
	rec.Status = verification.Status(status)
	rec.OCRData = ocrData
	rec.RawResponse = rawResp
	rec.ErrorMessage = errMsg.String
	if liveness.Valid {
		rec.LivenessScore = &liveness.Float64
	}
	if similarity.Valid {
		rec.SimilarityScore = &similarity.Float64
	}

	rec.DocumentNumber = text[0].String
	rec.Name = text[1].String
	rec.BirthPlace = text[2].String
	rec.Gender = text[3].String
	rec.Address = text[4].String
	rec.RTRW = text[5].String
	rec.Village = text[6].String
	rec.District = text[7].String
	rec.City = text[8].String
	rec.Province = text[9].String
	rec.Religion = text[10].String
	rec.MaritalStatus = text[11].String
	rec.Occupation = text[12].String
	rec.Nationality = text[13].String

	rec.BirthDate = formatDate(birthDate)
	rec.ExpiryDate = formatDate(expiryDate)
	return &rec, nil
}

// formatDate renders a DATE column as canonical YYYY-MM-DD, or "" for NULL.
func formatDate(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(time.DateOnly)
}

// nullDate binds a date field against a DATE column. Date fields pass
// unrecognized source text through verbatim; that text still lives in
// ocr_data/raw_response, but the typed column takes NULL for anything that is
// not canonical YYYY-MM-DD.
func nullDate(s string) any {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return nil
	}
	return s
}

// nullString maps the record convention of "" for NULL onto SQL parameters.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
