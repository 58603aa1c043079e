package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-backend/internal/config"
)

// Scheduler periodically exports the operational tables as JSON and
// uploads the snapshot to an S3-compatible bucket (Cloudflare R2).
type Scheduler struct {
	db       *pgxpool.Pool
	cfg      config.BackupConfig
	interval time.Duration
	ticker   *time.Ticker
	stopChan chan struct{}
	mu       sync.Mutex
	running  bool
}

func NewScheduler(db *pgxpool.Pool, cfg config.BackupConfig) *Scheduler {
	return &Scheduler{
		db:       db,
		cfg:      cfg,
		interval: 6 * time.Hour,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.interval)
	s.stopChan = make(chan struct{})

	log.Printf("[Backup] Scheduler started, interval %s", s.interval)
	go func() {
		// First snapshot shortly after boot so a fresh deploy is covered.
		time.Sleep(2 * time.Minute)
		s.run()
		for {
			select {
			case <-s.ticker.C:
				s.run()
			case <-s.stopChan:
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.ticker.Stop()
	close(s.stopChan)
	log.Println("[Backup] Scheduler stopped")
}

func (s *Scheduler) run() {
	if err := s.RunOnce(); err != nil {
		log.Println("[Backup] Backup failed:", err)
	}
}

// RunOnce builds and uploads a single snapshot. Exposed so an admin
// endpoint or CLI can trigger an out-of-cycle backup.
func (s *Scheduler) RunOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	snapshot, err := s.buildSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, ""),
		),
		awsconfig.WithRegion(s.cfg.Region),
	)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.Endpoint)
	})

	key := fmt.Sprintf("backups/repair-backend-%s.json", time.Now().Format("20060102-150405"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(snapshot),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload to %s: %w", s.cfg.Bucket, err)
	}

	log.Printf("[Backup] Uploaded %s (%d bytes)", key, len(snapshot))
	return nil
}

func (s *Scheduler) buildSnapshot(ctx context.Context) ([]byte, error) {
	tables := []string{"customers", "materials", "repair_orders", "cash_transactions", "system_settings", "audit_logs"}

	out := map[string]interface{}{
		"exported_at": time.Now().Format(time.RFC3339),
	}
	for _, table := range tables {
		rows, err := s.dumpTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}
		out[table] = rows
	}
	return json.Marshal(out)
}

func (s *Scheduler) dumpTable(ctx context.Context, table string) ([]map[string]interface{}, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT row_to_json(t) FROM %s t", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		var record map[string]interface{}
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
