package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"wildguard/models"
)

// PostgresWriter persists detections to PostgreSQL, deduplicating by
// listing URL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS detections (
			id                    UUID         PRIMARY KEY,
			platform              VARCHAR(50)  NOT NULL,
			threat_score          SMALLINT     NOT NULL,
			threat_level          VARCHAR(16)  NOT NULL,
			threat_category       VARCHAR(32)  NOT NULL,
			confidence            NUMERIC(4,3) NOT NULL DEFAULT 0,
			requires_human_review BOOLEAN      NOT NULL DEFAULT FALSE,
			title                 TEXT         NOT NULL,
			url                   TEXT         UNIQUE NOT NULL,
			raw_price             TEXT         NOT NULL DEFAULT '',
			search_term           TEXT         NOT NULL DEFAULT '',
			location              TEXT         NOT NULL DEFAULT '',
			wildlife_indicators   TEXT[]       NOT NULL DEFAULT '{}',
			human_indicators      TEXT[]       NOT NULL DEFAULT '{}',
			vision_analyzed       BOOLEAN      NOT NULL DEFAULT FALSE,
			quality_score         NUMERIC(4,3) NOT NULL DEFAULT 0,
			initial_threat_level  VARCHAR(16)  NOT NULL DEFAULT 'UNRATED',
			created_at            TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_detections_platform ON detections(platform);
		CREATE INDEX IF NOT EXISTS idx_detections_level    ON detections(threat_level);
		CREATE INDEX IF NOT EXISTS idx_detections_category ON detections(threat_category);
		CREATE INDEX IF NOT EXISTS idx_detections_review   ON detections(requires_human_review);
	`)
	return err
}

// Write inserts detections in batches, skipping any whose URL is already
// stored. Returns the number of newly inserted rows.
func (pw *PostgresWriter) Write(ctx context.Context, detections []*models.Detection) (int, error) {
	if len(detections) == 0 {
		return 0, nil
	}

	inserted := 0
	const batchSize = 50
	for i := 0; i < len(detections); i += batchSize {
		end := i + batchSize
		if end > len(detections) {
			end = len(detections)
		}
		n, err := pw.insertBatch(ctx, detections[i:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (pw *PostgresWriter) insertBatch(ctx context.Context, batch []*models.Detection) (int, error) {
	const cols = 17
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, d := range batch {
		base := idx * cols
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			d.ID, d.Platform, d.ThreatScore, string(d.ThreatLevel),
			string(d.ThreatCategory), d.Confidence, d.RequiresHumanReview,
			d.Title, d.URL, d.RawPrice, d.SearchTerm, d.Location,
			pq.Array(d.WildlifeIndicators), pq.Array(d.HumanIndicators),
			d.VisionAnalyzed, d.QualityScore, string(d.InitialThreatLevel),
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO detections (
			id, platform, threat_score, threat_level, threat_category,
			confidence, requires_human_review, title, url, raw_price,
			search_term, location, wildlife_indicators, human_indicators,
			vision_analyzed, quality_score, initial_threat_level
		)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	res, err := pw.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert detections: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the underlying connection pool.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchReviewQueue retrieves detections flagged for human review, newest
// first.
func (pw *PostgresWriter) FetchReviewQueue(ctx context.Context, limit int) ([]*models.Detection, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT id, platform, threat_score, threat_level, threat_category,
		       confidence, requires_human_review, title, url, raw_price,
		       search_term, location, wildlife_indicators, human_indicators,
		       vision_analyzed, quality_score, initial_threat_level, created_at
		FROM detections
		WHERE requires_human_review = TRUE
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch review queue: %w", err)
	}
	defer rows.Close()

	var detections []*models.Detection
	for rows.Next() {
		d := &models.Detection{}
		var level, category, initial string
		if err := rows.Scan(
			&d.ID, &d.Platform, &d.ThreatScore, &level, &category,
			&d.Confidence, &d.RequiresHumanReview, &d.Title, &d.URL,
			&d.RawPrice, &d.SearchTerm, &d.Location,
			pq.Array(&d.WildlifeIndicators), pq.Array(&d.HumanIndicators),
			&d.VisionAnalyzed, &d.QualityScore, &initial, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		d.ThreatLevel = models.ThreatLevel(level)
		d.ThreatCategory = models.ThreatCategory(category)
		d.InitialThreatLevel = models.ThreatLevel(initial)
		detections = append(detections, d)
	}
	return detections, rows.Err()
}
