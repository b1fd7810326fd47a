package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/benchstay/internal/config"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	marketservice "github.com/smallbiznis/benchstay/internal/market/service"
	"github.com/smallbiznis/benchstay/internal/metric"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"github.com/smallbiznis/benchstay/internal/providers/excel"
	"github.com/smallbiznis/benchstay/internal/providers/pdf"
	reportdomain "github.com/smallbiznis/benchstay/internal/report/domain"
	"github.com/smallbiznis/benchstay/internal/reportcache"
	"github.com/smallbiznis/benchstay/pkg/dates"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Properties propertydomain.Service
	Records    dailyrecorddomain.Repository
	Market     marketdomain.Repository
	Reporting  *config.ReportingConfigHolder
	Excel      excel.Provider
	PDF        pdf.Provider
	Cache      *reportcache.Cache `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	properties propertydomain.Service
	records    dailyrecorddomain.Repository
	market     marketdomain.Repository
	reporting  *config.ReportingConfigHolder
	excel      excel.Provider
	pdf        pdf.Provider
	cache      *reportcache.Cache
}

func New(p Params) reportdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("report.service"),
		properties: p.Properties,
		records:    p.Records,
		market:     p.Market,
		reporting:  p.Reporting,
		excel:      p.Excel,
		pdf:        p.PDF,
		cache:      p.Cache,
	}
}

func (s *Service) PerformanceSummary(ctx context.Context, hotelID snowflake.ID, start, end time.Time) (*reportdomain.PerformanceSummary, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}
	hotel, err := s.properties.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(hotelID, reportdomain.ReportPerformance, start, end)
	return reportcache.Remember(ctx, s.cache, key, func() (*reportdomain.PerformanceSummary, error) {
		current, err := s.periodFigures(ctx, hotelID, start, end)
		if err != nil {
			return nil, err
		}
		prevStart, prevEnd := dates.PreviousPeriod(start, end)
		previous, err := s.periodFigures(ctx, hotelID, prevStart, prevEnd)
		if err != nil {
			return nil, err
		}

		cfg := s.reporting.Get()
		return &reportdomain.PerformanceSummary{
			HotelID:   hotel.ID,
			HotelName: hotel.Name,
			Currency:  cfg.Currency,
			Current:   current.display(cfg),
			Previous:  previous.display(cfg),
			Change:    percentChanges(current, previous, cfg),
		}, nil
	})
}

// rawPeriod keeps the averages at full precision until display.
type rawPeriod struct {
	start, end time.Time
	days       int
	hotel      reportdomain.MetricSet
	market     reportdomain.MetricSet
	indices    reportdomain.IndexSet
}

func (s *Service) periodFigures(ctx context.Context, hotelID snowflake.ID, start, end time.Time) (rawPeriod, error) {
	db := s.db.WithContext(ctx)
	period := rawPeriod{start: start, end: end}

	records, err := s.records.ListInRange(ctx, db, hotelID, start, end)
	if err != nil {
		return period, err
	}
	var occupancy, adr, revpar []decimal.Decimal
	for _, rec := range records {
		if !rec.IsHotel() {
			continue
		}
		occupancy = append(occupancy, rec.OccupancyPercentage)
		adr = append(adr, rec.AverageRate)
		revpar = append(revpar, rec.RevPAR)
	}
	period.days = len(occupancy)
	period.hotel = reportdomain.MetricSet{Occupancy: mean(occupancy), ADR: mean(adr), RevPAR: mean(revpar)}

	snapshots, err := s.market.ListSnapshots(ctx, db, hotelID, start, end)
	if err != nil {
		return period, err
	}
	occupancy, adr, revpar = occupancy[:0], adr[:0], revpar[:0]
	for _, snap := range snapshots {
		occupancy = append(occupancy, snap.MarketOccupancy)
		adr = append(adr, snap.MarketADR)
		revpar = append(revpar, snap.MarketRevPAR)
	}
	period.market = reportdomain.MetricSet{Occupancy: mean(occupancy), ADR: mean(adr), RevPAR: mean(revpar)}

	indices, err := s.market.ListIndices(ctx, db, hotelID, start, end)
	if err != nil {
		return period, err
	}
	var mpi, ari, rgi []decimal.NullDecimal
	for _, idx := range indices {
		if idx.CompetitorID != dailyrecorddomain.HotelEntity {
			continue
		}
		mpi = append(mpi, idx.MPI)
		ari = append(ari, idx.ARI)
		rgi = append(rgi, idx.RGI)
	}
	period.indices = reportdomain.IndexSet{MPI: meanNull(mpi), ARI: meanNull(ari), RGI: meanNull(rgi)}

	return period, nil
}

func (p rawPeriod) display(cfg config.ReportingConfig) reportdomain.Period {
	return reportdomain.Period{
		StartDate:    dates.Format(p.start),
		EndDate:      dates.Format(p.end),
		DaysWithData: p.days,
		Hotel:        displayMetrics(p.hotel, cfg),
		Market:       displayMetrics(p.market, cfg),
		Indices: reportdomain.IndexSet{
			MPI: displayNull(p.indices.MPI, cfg.PercentagePlaces),
			ARI: displayNull(p.indices.ARI, cfg.PercentagePlaces),
			RGI: displayNull(p.indices.RGI, cfg.PercentagePlaces),
		},
	}
}

func percentChanges(current, previous rawPeriod, cfg config.ReportingConfig) reportdomain.Change {
	pct := func(cur, prev decimal.Decimal) decimal.Decimal {
		return metric.Display(metric.PercentChange(cur, prev), cfg.PercentagePlaces)
	}
	pctNull := func(cur, prev decimal.NullDecimal) decimal.Decimal {
		if !cur.Valid || !prev.Valid {
			return decimal.Zero
		}
		return pct(cur.Decimal, prev.Decimal)
	}
	return reportdomain.Change{
		Occupancy: pct(current.hotel.Occupancy, previous.hotel.Occupancy),
		ADR:       pct(current.hotel.ADR, previous.hotel.ADR),
		RevPAR:    pct(current.hotel.RevPAR, previous.hotel.RevPAR),
		MPI:       pctNull(current.indices.MPI, previous.indices.MPI),
		ARI:       pctNull(current.indices.ARI, previous.indices.ARI),
		RGI:       pctNull(current.indices.RGI, previous.indices.RGI),
	}
}

func (s *Service) CompetitorAnalytics(ctx context.Context, hotelID snowflake.ID, start, end time.Time) (*reportdomain.CompetitorAnalytics, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}
	hotel, err := s.properties.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(hotelID, reportdomain.ReportCompetitors, start, end)
	return reportcache.Remember(ctx, s.cache, key, func() (*reportdomain.CompetitorAnalytics, error) {
		competitors, err := s.properties.ActiveCompetitors(ctx, hotelID)
		if err != nil {
			return nil, err
		}
		records, err := s.records.ListInRange(ctx, s.db.WithContext(ctx), hotelID, start, end)
		if err != nil {
			return nil, err
		}

		cfg := s.reporting.Get()
		rows, totals := analyticsRows(hotel, competitors, records)
		out := &reportdomain.CompetitorAnalytics{
			HotelID:   hotel.ID,
			HotelName: hotel.Name,
			Currency:  cfg.Currency,
			StartDate: dates.Format(start),
			EndDate:   dates.Format(end),
			Rows:      make([]reportdomain.AnalyticsRow, 0, len(rows)),
			Totals:    displayRow(totals, cfg),
		}
		for _, row := range rows {
			out.Rows = append(out.Rows, displayRow(row, cfg))
		}
		return out, nil
	})
}

// analyticsRows sums each participant over the range and ranks the range totals.
// Records of competitors that are no longer active are left out, as in the daily market.
func analyticsRows(hotel *propertydomain.Hotel, competitors []propertydomain.Competitor, records []dailyrecorddomain.DailyRecord) ([]reportdomain.AnalyticsRow, reportdomain.AnalyticsRow) {
	rows := make([]reportdomain.AnalyticsRow, 0, len(competitors)+1)
	position := make(map[snowflake.ID]int, len(competitors)+1)

	rows = append(rows, reportdomain.AnalyticsRow{
		EntityType:   reportdomain.EntityHotel,
		CompetitorID: dailyrecorddomain.HotelEntity,
		Name:         hotel.Name,
		Revenue:      decimal.Zero,
	})
	position[dailyrecorddomain.HotelEntity] = 0
	for _, c := range competitors {
		position[c.ID] = len(rows)
		rows = append(rows, reportdomain.AnalyticsRow{
			EntityType:   reportdomain.EntityCompetitor,
			CompetitorID: c.ID,
			Name:         c.Name,
			Revenue:      decimal.Zero,
		})
	}

	totals := reportdomain.AnalyticsRow{EntityType: "market", Name: "Market", Revenue: decimal.Zero}
	reportedDays := make(map[time.Time]struct{})
	for _, rec := range records {
		i, ok := position[rec.CompetitorID]
		if !ok {
			continue
		}
		revenue := marketservice.RecordRevenue(rec)
		rows[i].DaysReported++
		rows[i].RoomsAvailable += rec.TotalRooms
		rows[i].RoomsSold += rec.RoomsSold
		rows[i].Revenue = rows[i].Revenue.Add(revenue)

		totals.RoomsAvailable += rec.TotalRooms
		totals.RoomsSold += rec.RoomsSold
		totals.Revenue = totals.Revenue.Add(revenue)
		reportedDays[dates.Normalize(rec.Date)] = struct{}{}
	}
	totals.DaysReported = len(reportedDays)

	market := metric.Compute(totals.RoomsSold, totals.Revenue, totals.RoomsAvailable)
	totals.Occupancy, totals.ADR, totals.RevPAR = market.OccupancyPercentage, market.AverageRate, market.RevPAR
	if totals.RoomsAvailable > 0 {
		totals.FairMarketShare = decimal.NewFromInt(100)
		totals.ActualMarketShare = decimal.NewFromInt(100)
	}

	marketRooms := decimal.NewFromInt(int64(totals.RoomsAvailable))
	marketSold := decimal.NewFromInt(int64(totals.RoomsSold))
	var mpiItems, ariItems, rgiItems []marketservice.RankItem
	for i := range rows {
		row := &rows[i]
		own := metric.Compute(row.RoomsSold, row.Revenue, row.RoomsAvailable)
		row.Occupancy, row.ADR, row.RevPAR = own.OccupancyPercentage, own.AverageRate, own.RevPAR

		fair := metric.Ratio(decimal.NewFromInt(int64(row.RoomsAvailable)), marketRooms)
		actual := metric.Ratio(decimal.NewFromInt(int64(row.RoomsSold)), marketSold)
		row.FairMarketShare = fair
		row.ActualMarketShare = actual
		if row.RoomsAvailable > 0 {
			row.MPI = decimal.NewNullDecimal(metric.Store(metric.Ratio(actual, fair)))
			row.ARI = decimal.NewNullDecimal(metric.Store(metric.Ratio(own.AverageRate, market.AverageRate)))
			row.RGI = decimal.NewNullDecimal(metric.Store(metric.Ratio(own.RevPAR, market.RevPAR)))
		}

		mpiItems = append(mpiItems, marketservice.RankItem{Key: row.CompetitorID, Name: row.Name, Value: row.MPI})
		ariItems = append(ariItems, marketservice.RankItem{Key: row.CompetitorID, Name: row.Name, Value: row.ARI})
		rgiItems = append(rgiItems, marketservice.RankItem{Key: row.CompetitorID, Name: row.Name, Value: row.RGI})
	}

	mpiRanks := marketservice.CompetitionRanks(mpiItems)
	ariRanks := marketservice.CompetitionRanks(ariItems)
	rgiRanks := marketservice.CompetitionRanks(rgiItems)
	for i := range rows {
		id := rows[i].CompetitorID
		rows[i].MPIRank = rankPtr(mpiRanks, id)
		rows[i].ARIRank = rankPtr(ariRanks, id)
		rows[i].RGIRank = rankPtr(rgiRanks, id)
	}
	return rows, totals
}

func (s *Service) RevPARMatrix(ctx context.Context, hotelID snowflake.ID, start, end time.Time) (*reportdomain.RevPARMatrix, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}
	hotel, err := s.properties.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(hotelID, reportdomain.ReportRevPARMatrix, start, end)
	return reportcache.Remember(ctx, s.cache, key, func() (*reportdomain.RevPARMatrix, error) {
		db := s.db.WithContext(ctx)
		places := s.reporting.Get().PercentagePlaces
		out := &reportdomain.RevPARMatrix{
			HotelID:     hotel.ID,
			StartDate:   dates.Format(start),
			EndDate:     dates.Format(end),
			Competitors: []reportdomain.MatrixPoint{},
		}

		indices, err := s.market.ListIndices(ctx, db, hotelID, start, end)
		if err != nil {
			return nil, err
		}
		for _, idx := range indices {
			if idx.CompetitorID != dailyrecorddomain.HotelEntity || !idx.MPI.Valid || !idx.ARI.Valid {
				continue
			}
			if out.Hotel != nil && out.Hotel.Date >= dates.Format(idx.Date) {
				continue
			}
			out.Hotel = &reportdomain.MatrixPoint{
				EntityType: reportdomain.EntityHotel,
				Name:       hotel.Name,
				Date:       dates.Format(idx.Date),
				X:          metric.Display(idx.MPI.Decimal, places),
				Y:          metric.Display(idx.ARI.Decimal, places),
			}
		}

		competitors, err := s.properties.ActiveCompetitors(ctx, hotelID)
		if err != nil {
			return nil, err
		}
		records, err := s.records.ListInRange(ctx, db, hotelID, start, end)
		if err != nil {
			return nil, err
		}
		latest := make(map[snowflake.ID]dailyrecorddomain.DailyRecord)
		for _, rec := range records {
			if rec.IsHotel() || !rec.OccupancyIndex.Valid || !rec.ADRIndex.Valid {
				continue
			}
			if prev, ok := latest[rec.CompetitorID]; ok && !rec.Date.After(prev.Date) {
				continue
			}
			latest[rec.CompetitorID] = rec
		}
		for _, c := range competitors {
			rec, ok := latest[c.ID]
			if !ok {
				continue
			}
			out.Competitors = append(out.Competitors, reportdomain.MatrixPoint{
				EntityType:   reportdomain.EntityCompetitor,
				CompetitorID: c.ID,
				Name:         c.Name,
				Date:         dates.Format(rec.Date),
				X:            metric.Display(rec.OccupancyIndex.Decimal, places),
				Y:            metric.Display(rec.ADRIndex.Decimal, places),
			})
		}
		return out, nil
	})
}

func normalizeRange(start, end time.Time) (time.Time, time.Time, error) {
	start, end = dates.Normalize(start), dates.Normalize(end)
	if end.Before(start) {
		return start, end, reportdomain.ErrInvalidRange
	}
	return start, end, nil
}

func cacheKey(hotelID snowflake.ID, report string, start, end time.Time) reportcache.Key {
	return reportcache.Key{
		HotelID: hotelID,
		Report:  report,
		Start:   dates.Format(start),
		End:     dates.Format(end),
	}
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(values))), 16)
}

// meanNull averages the valid values and is null when there are none.
func meanNull(values []decimal.NullDecimal) decimal.NullDecimal {
	valid := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		if v.Valid {
			valid = append(valid, v.Decimal)
		}
	}
	if len(valid) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(mean(valid))
}

func rankPtr(ranks map[snowflake.ID]int, id snowflake.ID) *int {
	rank, ok := ranks[id]
	if !ok {
		return nil
	}
	return &rank
}

func displayMetrics(m reportdomain.MetricSet, cfg config.ReportingConfig) reportdomain.MetricSet {
	return reportdomain.MetricSet{
		Occupancy: metric.Display(m.Occupancy, cfg.PercentagePlaces),
		ADR:       metric.Display(m.ADR, cfg.CurrencyPlaces),
		RevPAR:    metric.Display(m.RevPAR, cfg.CurrencyPlaces),
	}
}

func displayNull(v decimal.NullDecimal, places int32) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(metric.Display(v.Decimal, places))
}

func displayRow(row reportdomain.AnalyticsRow, cfg config.ReportingConfig) reportdomain.AnalyticsRow {
	row.Revenue = metric.Display(row.Revenue, cfg.CurrencyPlaces)
	row.Occupancy = metric.Display(row.Occupancy, cfg.PercentagePlaces)
	row.ADR = metric.Display(row.ADR, cfg.CurrencyPlaces)
	row.RevPAR = metric.Display(row.RevPAR, cfg.CurrencyPlaces)
	row.FairMarketShare = metric.Display(row.FairMarketShare, cfg.PercentagePlaces)
	row.ActualMarketShare = metric.Display(row.ActualMarketShare, cfg.PercentagePlaces)
	row.MPI = displayNull(row.MPI, cfg.PercentagePlaces)
	row.ARI = displayNull(row.ARI, cfg.PercentagePlaces)
	row.RGI = displayNull(row.RGI, cfg.PercentagePlaces)
	return row
}
