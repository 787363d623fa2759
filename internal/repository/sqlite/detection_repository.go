package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"ecocare/internal/model"
	"ecocare/internal/repository"
)

const detectionColumns = `id, product_type, brand, model_or_series, image,
	metals, semiconductors, battery_materials, structural_materials, confidence, created_at`

// DetectionRepository implements repository.DetectionRepository for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// Insert adds a new detection record to the database and sets its ID.
func (r *DetectionRepository) Insert(ctx context.Context, det *model.Detection) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	args, err := insertArgs(det)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Conn().ExecContext(ctx, insertDetectionSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read detection id: %w", err)
	}
	det.ID = id
	return id, nil
}

// InsertBatch adds multiple detections in a single transaction.
func (r *DetectionRepository) InsertBatch(ctx context.Context, detections []model.Detection) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertDetectionSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range detections {
		args, err := insertArgs(&detections[i])
		if err != nil {
			return err
		}
		result, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("failed to insert detection: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			detections[i].ID = id
		}
	}

	return tx.Commit()
}

// GetByID retrieves a detection by its ID.
func (r *DetectionRepository) GetByID(ctx context.Context, id int64) (*model.Detection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRowContext(ctx, `SELECT `+detectionColumns+` FROM detections WHERE id = ?`, id)
	det, err := scanDetection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection: %w", err)
	}
	return det, nil
}

// List retrieves detections matching the filter, newest first.
func (r *DetectionRepository) List(ctx context.Context, filter *model.DetectionFilter) ([]model.Detection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT ` + detectionColumns + ` FROM detections WHERE 1=1`
	args := []interface{}{}

	if filter.Window != nil {
		query += " AND created_at >= ? AND created_at <= ?"
		args = append(args, toMillis(filter.Window.Start), toMillis(filter.Window.End))
	}

	if filter.ProductType != "" {
		query += " AND product_type = ? COLLATE NOCASE"
		args = append(args, filter.ProductType)
	}

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query += ` AND (brand LIKE ? ESCAPE '\' OR model_or_series LIKE ? ESCAPE '\' OR product_type LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return r.query(ctx, query, args...)
}

// ListAll retrieves every detection ordered by brand.
func (r *DetectionRepository) ListAll(ctx context.Context) ([]model.Detection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.query(ctx, `SELECT `+detectionColumns+` FROM detections ORDER BY brand, id`)
}

// Count returns the number of detections matching the filter.
func (r *DetectionRepository) Count(ctx context.Context, filter *model.CountFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT COUNT(*) FROM detections WHERE 1=1`
	args := []interface{}{}

	if filter.Window != nil {
		query += " AND created_at >= ? AND created_at <= ?"
		args = append(args, toMillis(filter.Window.Start), toMillis(filter.Window.End))
	}

	if filter.ProductType != "" {
		query += " AND product_type = ?"
		args = append(args, filter.ProductType)
	}

	if filter.ConfidenceBelow > 0 {
		query += " AND confidence < ?"
		args = append(args, filter.ConfidenceBelow)
	}

	var count int
	if err := r.db.Conn().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count detections: %w", err)
	}
	return count, nil
}

// CountByProductType groups detections in the window by product type,
// most frequent first.
func (r *DetectionRepository) CountByProductType(ctx context.Context, window model.Window) ([]model.GroupCount, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT product_type, COUNT(*) AS cnt
		FROM detections
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY product_type
		ORDER BY cnt DESC, product_type ASC
	`, toMillis(window.Start), toMillis(window.End))
	if err != nil {
		return nil, fmt.Errorf("failed to group detections: %w", err)
	}
	defer rows.Close()

	groups := []model.GroupCount{}
	for rows.Next() {
		var g model.GroupCount
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Points returns the bucketing projection of detections in the window, oldest first.
func (r *DetectionRepository) Points(ctx context.Context, window model.Window) ([]model.DetectionPoint, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT created_at, product_type, component_count
		FROM detections
		WHERE created_at >= ? AND created_at <= ?
		ORDER BY created_at ASC
	`, toMillis(window.Start), toMillis(window.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query detection points: %w", err)
	}
	defer rows.Close()

	var points []model.DetectionPoint
	for rows.Next() {
		var p model.DetectionPoint
		var createdAt int64
		if err := rows.Scan(&createdAt, &p.ProductType, &p.ComponentCount); err != nil {
			return nil, fmt.Errorf("failed to scan detection point: %w", err)
		}
		p.CreatedAt = fromMillis(createdAt)
		points = append(points, p)
	}
	return points, rows.Err()
}

// UpdateCreatedAt moves a detection to a new timestamp.
func (r *DetectionRepository) UpdateCreatedAt(ctx context.Context, id int64, createdAt time.Time) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().ExecContext(ctx, `UPDATE detections SET created_at = ? WHERE id = ?`, toMillis(createdAt), id)
	if err != nil {
		return fmt.Errorf("failed to update detection: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteWithoutImage removes every detection that has no image reference.
func (r *DetectionRepository) DeleteWithoutImage(ctx context.Context) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().ExecContext(ctx, `DELETE FROM detections WHERE image IS NULL OR TRIM(image) = ''`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete detections: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAll removes all detections.
func (r *DetectionRepository) DeleteAll(ctx context.Context) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().ExecContext(ctx, `DELETE FROM detections`); err != nil {
		return fmt.Errorf("failed to delete detections: %w", err)
	}
	return nil
}

func (r *DetectionRepository) query(ctx context.Context, query string, args ...interface{}) ([]model.Detection, error) {
	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	detections := []model.Detection{}
	for rows.Next() {
		det, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, *det)
	}
	return detections, rows.Err()
}

const insertDetectionSQL = `
	INSERT INTO detections (product_type, brand, model_or_series, image,
		metals, semiconductors, battery_materials, structural_materials,
		component_count, confidence, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func insertArgs(det *model.Detection) ([]interface{}, error) {
	det.Normalize()
	if det.CreatedAt.IsZero() {
		det.CreatedAt = time.Now()
	}

	lists := make([]interface{}, 0, 4)
	for _, list := range [][]string{det.Metals, det.Semiconductors, det.BatteryMaterials, det.StructuralMaterials} {
		raw, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to encode materials: %w", err)
		}
		lists = append(lists, string(raw))
	}

	args := []interface{}{det.ProductType, det.Brand, det.ModelOrSeries, det.Image}
	args = append(args, lists...)
	args = append(args, det.ComponentCount(), det.Confidence, toMillis(det.CreatedAt))
	return args, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDetection(row rowScanner) (*model.Detection, error) {
	var det model.Detection
	var metals, semis, battery, structural string
	var createdAt int64

	if err := row.Scan(&det.ID, &det.ProductType, &det.Brand, &det.ModelOrSeries, &det.Image,
		&metals, &semis, &battery, &structural, &det.Confidence, &createdAt); err != nil {
		return nil, err
	}

	targets := []*[]string{&det.Metals, &det.Semiconductors, &det.BatteryMaterials, &det.StructuralMaterials}
	for i, raw := range []string{metals, semis, battery, structural} {
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), targets[i]); err != nil {
			return nil, fmt.Errorf("failed to decode materials: %w", err)
		}
	}

	det.CreatedAt = fromMillis(createdAt)
	det.Normalize()
	return &det, nil
}

// escapeLike escapes LIKE wildcards so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
