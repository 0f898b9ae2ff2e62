package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/platform/obs"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisReportRepository stores runs in Redis:
//
//	<prefix>:run:<id>             hash with the run summary
//	<prefix>:run:<id>:deliveries  list of JSON delivery records, in order
//	<prefix>:runs                 sorted set of run ids scored by start time
type RedisReportRepository struct {
	Client *redis.Client
	Prefix string
}

func NewRedisReportRepository(client *redis.Client, prefix string) *RedisReportRepository {
	if prefix == "" {
		prefix = "automail"
	}
	return &RedisReportRepository{Client: client, Prefix: prefix}
}

type deliveryJSON struct {
	ItemID        string  `json:"item_id"`
	DestFloor     int     `json:"dest_floor"`
	ArrivalTime   int     `json:"arrival_time"`
	DeliveredAt   int     `json:"delivered_at"`
	Weight        int     `json:"weight"`
	Fragile       bool    `json:"fragile"`
	PriorityLevel int     `json:"priority_level"`
	Score         float64 `json:"score"`
}

func (s *RedisReportRepository) runKey(runID string) string {
	return s.Prefix + ":run:" + runID
}

func (s *RedisReportRepository) deliveriesKey(runID string) string {
	return s.runKey(runID) + ":deliveries"
}

func (s *RedisReportRepository) SaveReport(
	ctx context.Context,
	report *domain.RunReport,
	records []domain.DeliveryRecord,
) (err error) {
	defer obs.Time(ctx, "report.redis.SaveReport")(&err)

	if s.Client == nil {
		return errors.New("redis report repository: client is nil")
	}
	if report == nil || report.RunID == "" {
		return errors.New("save report: run id must not be empty")
	}

	payload := make([]any, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(deliveryJSON(r))
		if err != nil {
			return fmt.Errorf("save report: encode delivery item=%s: %w", r.ItemID, err)
		}
		payload = append(payload, string(b))
	}

	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.runKey(report.RunID), s.deliveriesKey(report.RunID))
		pipe.HSet(ctx, s.runKey(report.RunID), map[string]any{
			"seed":         report.Seed,
			"robots":       strings.Join(report.Robots, ","),
			"ticks":        report.Ticks,
			"generated":    report.Generated,
			"delivered":    report.Delivered,
			"total_score":  report.TotalScore,
			"started_at":   report.StartedAt.UnixMilli(),
			"finished_at":  report.FinishedAt.UnixMilli(),
			"failure_kind": report.FailureKind,
		})
		if len(payload) > 0 {
			pipe.RPush(ctx, s.deliveriesKey(report.RunID), payload...)
		}
		pipe.ZAdd(ctx, s.Prefix+":runs", redis.Z{
			Score:  float64(report.StartedAt.UnixMilli()),
			Member: report.RunID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save report: redis pipeline for run %s: %w", report.RunID, err)
	}
	return nil
}

func (s *RedisReportRepository) ListDeliveries(ctx context.Context, runID string) (_ []domain.DeliveryRecord, err error) {
	defer obs.Time(ctx, "report.redis.ListDeliveries")(&err)

	if s.Client == nil {
		return nil, errors.New("redis report repository: client is nil")
	}

	raw, err := s.Client.LRange(ctx, s.deliveriesKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list deliveries: lrange run %s: %w", runID, err)
	}

	out := make([]domain.DeliveryRecord, 0, len(raw))
	for i, v := range raw {
		var d deliveryJSON
		if err := json.Unmarshal([]byte(v), &d); err != nil {
			return nil, fmt.Errorf("list deliveries: decode entry %d: %w", i, err)
		}
		out = append(out, domain.DeliveryRecord(d))
	}
	return out, nil
}

// ListRuns returns stored run ids, oldest first.
func (s *RedisReportRepository) ListRuns(ctx context.Context) ([]string, error) {
	if s.Client == nil {
		return nil, errors.New("redis report repository: client is nil")
	}
	ids, err := s.Client.ZRange(ctx, s.Prefix+":runs", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list runs: zrange: %w", err)
	}
	return ids, nil
}
