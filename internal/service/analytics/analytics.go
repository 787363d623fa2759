package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"ecocare/internal/dto"
	"ecocare/internal/logger"
	"ecocare/internal/metrics"
	"ecocare/internal/model"
	"ecocare/internal/repository"
)

// AllDevices is the history type filter value that disables type filtering.
const AllDevices = "All Devices"

// Timeline count types.
const (
	CountProducts   = "products"
	CountComponents = "components"
)

// Default ranges per query.
const (
	DefaultRecentRange    = model.RangeToday
	DefaultMaterialsRange = model.RangeToday
	DefaultStatsRange     = model.RangeToday
	DefaultAlertsRange    = model.RangeToday
	DefaultAccuracyRange  = model.RangeMonth
	DefaultTimelineRange  = model.RangeToday
)

type Options struct {
	Location               *time.Location
	RecentLimit            int
	HistoryLimit           int
	LowConfidenceThreshold float64
	RepeatedScanThreshold  float64
	Now                    func() time.Time
}

// Service answers the dashboard queries. Every method is read-only.
type Service struct {
	repo repository.DetectionRepository
	log  *logger.Logger

	loc          *time.Location
	recentLimit  int
	historyLimit int
	lowConf      float64
	repeatedConf float64
	now          func() time.Time
}

func NewService(repo repository.DetectionRepository, log *logger.Logger, opts Options) *Service {
	s := &Service{
		repo:         repo,
		log:          log,
		loc:          opts.Location,
		recentLimit:  opts.RecentLimit,
		historyLimit: opts.HistoryLimit,
		lowConf:      opts.LowConfidenceThreshold,
		repeatedConf: opts.RepeatedScanThreshold,
		now:          opts.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.recentLimit <= 0 {
		s.recentLimit = 10
	}
	if s.historyLimit <= 0 {
		s.historyLimit = 50
	}
	return s
}

// Window resolves r against the current time in the configured zone.
func (s *Service) Window(r model.Range) model.Window {
	return r.Window(s.now().In(s.loc))
}

// Recent returns the newest records in the range.
func (s *Service) Recent(ctx context.Context, r model.Range) (_ []model.Detection, err error) {
	r = model.ParseRange(string(r), DefaultRecentRange)
	defer s.observe("recent", r, time.Now(), &err)

	w := s.Window(r)
	return s.repo.List(ctx, &model.DetectionFilter{Window: &w, Limit: s.recentLimit})
}

// History searches all records regardless of age.
func (s *Service) History(ctx context.Context, productType, search string) (_ []model.Detection, err error) {
	defer s.observe("history", "all", time.Now(), &err)

	productType = strings.TrimSpace(productType)
	if strings.EqualFold(productType, AllDevices) {
		productType = ""
	}
	return s.repo.List(ctx, &model.DetectionFilter{
		ProductType: productType,
		Search:      strings.TrimSpace(search),
		Limit:       s.historyLimit,
	})
}

// TopMaterials counts records per product type, most frequent first.
func (s *Service) TopMaterials(ctx context.Context, r model.Range) (_ []dto.NameValue, err error) {
	r = model.ParseRange(string(r), DefaultMaterialsRange)
	defer s.observe("materials", r, time.Now(), &err)

	groups, err := s.repo.CountByProductType(ctx, s.Window(r))
	if err != nil {
		return nil, err
	}

	out := make([]dto.NameValue, len(groups))
	for i, g := range groups {
		out[i] = dto.NameValue{Name: g.Name, Value: g.Count}
	}
	return out, nil
}

// Stats returns the headline cards for the range.
func (s *Service) Stats(ctx context.Context, r model.Range) (_ *dto.DashboardStats, err error) {
	r = model.ParseRange(string(r), DefaultStatsRange)
	defer s.observe("stats", r, time.Now(), &err)

	w := s.Window(r)
	total, err := s.repo.Count(ctx, &model.CountFilter{Window: &w})
	if err != nil {
		return nil, err
	}
	unknown, err := s.repo.Count(ctx, &model.CountFilter{Window: &w, ProductType: model.UnknownProductType})
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStats{
		DetectionRate: dto.StatValue{Value: fmt.Sprintf("%d%%", accuracy(total, unknown))},
		TotalItems:    dto.StatValue{Value: total},
		ErrorItems:    dto.StatValue{Value: unknown},
	}, nil
}

// Alerts counts records that need operator attention.
func (s *Service) Alerts(ctx context.Context, r model.Range) (_ *dto.Alerts, err error) {
	r = model.ParseRange(string(r), DefaultAlertsRange)
	defer s.observe("alerts", r, time.Now(), &err)

	w := s.Window(r)
	unknown, err := s.repo.Count(ctx, &model.CountFilter{Window: &w, ProductType: model.UnknownProductType})
	if err != nil {
		return nil, err
	}
	low, err := s.countBelow(ctx, w, s.lowConf)
	if err != nil {
		return nil, err
	}
	repeated, err := s.countBelow(ctx, w, s.repeatedConf)
	if err != nil {
		return nil, err
	}

	return &dto.Alerts{Unknown: unknown, LowConfidence: low, RepeatedScan: repeated}, nil
}

// countBelow counts records under a confidence threshold; a zero threshold matches nothing.
func (s *Service) countBelow(ctx context.Context, w model.Window, threshold float64) (int, error) {
	if threshold <= 0 {
		return 0, nil
	}
	return s.repo.Count(ctx, &model.CountFilter{Window: &w, ConfidenceBelow: threshold})
}

// AccuracyTrend returns the identification rate per bucket, preceded by the
// rate of the day before the window when that day has records.
func (s *Service) AccuracyTrend(ctx context.Context, r model.Range) (_ []dto.TrendPoint, err error) {
	r = model.ParseRange(string(r), DefaultAccuracyRange)
	defer s.observe("accuracy", r, time.Now(), &err)

	w := s.Window(r)
	points, err := s.repo.Points(ctx, w)
	if err != nil {
		return nil, err
	}

	type tally struct{ total, unknown int }
	buckets := map[string]*tally{}
	for _, p := range points {
		label := accuracyLabel(r, p.CreatedAt.In(s.loc))
		b, ok := buckets[label]
		if !ok {
			b = &tally{}
			buckets[label] = b
		}
		b.total++
		if p.ProductType == model.UnknownProductType {
			b.unknown++
		}
	}

	trend := make([]dto.TrendPoint, 0, len(buckets)+2)
	for _, label := range sortedKeys(buckets) {
		b := buckets[label]
		trend = append(trend, dto.TrendPoint{Day: label, Value: accuracy(b.total, b.unknown)})
	}

	prev, err := s.repo.Points(ctx, w.PreviousDay())
	if err != nil {
		return nil, err
	}
	if len(prev) > 0 {
		unknown := 0
		for _, p := range prev {
			if p.ProductType == model.UnknownProductType {
				unknown++
			}
		}
		trend = append([]dto.TrendPoint{{Day: "Prev", Value: accuracy(len(prev), unknown)}}, trend...)
	}

	// A single point cannot be drawn as a line.
	if len(trend) == 1 {
		trend = append([]dto.TrendPoint{{Day: "00", Value: trend[0].Value}}, trend...)
	}
	return trend, nil
}

// Timeline counts products or material components per bucket.
func (s *Service) Timeline(ctx context.Context, r model.Range) (_ *dto.Timeline, err error) {
	r = model.ParseRange(string(r), DefaultTimelineRange)
	defer s.observe("timeline", r, time.Now(), &err)

	points, err := s.repo.Points(ctx, s.Window(r))
	if err != nil {
		return nil, err
	}

	countType := timelineCountType(r)
	buckets := map[string]int{}
	for _, p := range points {
		label := timelineLabel(r, p.CreatedAt.In(s.loc))
		if countType == CountComponents {
			buckets[label] += p.ComponentCount
		} else {
			buckets[label]++
		}
	}

	data := make([]dto.TrendPoint, 0, len(buckets))
	for _, label := range sortedKeys(buckets) {
		data = append(data, dto.TrendPoint{Day: label, Value: buckets[label]})
	}
	return &dto.Timeline{Data: data, Type: countType}, nil
}

// observe records the query duration and logs failures. err is read after the query returns.
func (s *Service) observe(query string, r model.Range, start time.Time, err *error) {
	metrics.ObserveQuery(query, string(r), start, *err)
	if *err != nil {
		s.log.Error().Err(*err).Str("query", query).Str("range", string(r)).Msg("dashboard query failed")
	}
}

func timelineCountType(r model.Range) string {
	switch r {
	case model.RangeToday, model.RangeLifetime:
		return CountComponents
	default:
		return CountProducts
	}
}

// accuracyLabel buckets by hour for today, by month for year and lifetime,
// and by day of month otherwise.
func accuracyLabel(r model.Range, t time.Time) string {
	switch r {
	case model.RangeToday:
		return fmt.Sprintf("%02d", t.Hour())
	case model.RangeYear, model.RangeLifetime:
		return fmt.Sprintf("%02d", int(t.Month()))
	default:
		return fmt.Sprintf("%02d", t.Day())
	}
}

func timelineLabel(r model.Range, t time.Time) string {
	switch r {
	case model.RangeToday:
		return fmt.Sprintf("%02d", t.Hour())
	case model.RangeYear:
		return fmt.Sprintf("%02d", int(t.Month()))
	case model.RangeLifetime:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return fmt.Sprintf("%02d", t.Day())
	}
}

// accuracy is the share of identified records as a whole percentage, rounded half up.
func accuracy(total, unknown int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(total-unknown)/float64(total)*100 + 0.5))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
