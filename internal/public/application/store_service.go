package application

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// Mock preview prices used when the contract has no current prices.
var previewFallbackCents = []int64{1500000, 1580000}

const previewSize = 2

// StoreQueryConfig wires a StoreQueryService.
type StoreQueryConfig struct {
	Reader      LedgerReader
	Geocoder    Geocoder
	Logger      *zap.Logger
	Now         func() time.Time
	GeocodeFans int
}

// storeQueryService is the concrete implementation of StoreQueryService.
type storeQueryService struct {
	reader   LedgerReader
	geocoder Geocoder
	logger   *zap.Logger
	now      func() time.Time
	fanOut   int
}

// NewStoreQueryService creates a new store query service.
func NewStoreQueryService(cfg StoreQueryConfig) StoreQueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	fanOut := cfg.GeocodeFans
	if fanOut <= 0 {
		fanOut = 4
	}
	return &storeQueryService{
		reader:   cfg.Reader,
		geocoder: cfg.Geocoder,
		logger:   logger,
		now:      now,
		fanOut:   fanOut,
	}
}

func (s *storeQueryService) Ranked(ctx context.Context, query RankQuery) ([]domain.RankedStore, error) {
	if !session.ValidNetwork(query.Network) {
		return nil, ErrInvalidNetwork
	}
	details, err := s.reader.ListStoresWithPrices(ctx, query.Network)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ranked := make([]domain.RankedStore, 0, len(details))
	for _, d := range details {
		ranked = append(ranked, domain.RankedStore{
			StoreDetails: d,
			Price:        s.display(d.ID, d.CurrentPrice, now),
		})
	}

	domain.ApplyPriceDeltas(ranked)
	if query.Origin != nil {
		s.attachDistances(ctx, ranked, *query.Origin)
	}
	domain.SortStores(ranked, query.Sort)
	return ranked, nil
}

// attachDistances geocodes every store concurrently. A failed lookup leaves
// the store without a distance.
func (s *storeQueryService) attachDistances(ctx context.Context, stores []domain.RankedStore, origin domain.Coordinates) {
	if s.geocoder == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.fanOut)
	for i := range stores {
		i := i
		g.Go(func() error {
			coords, ok, err := s.geocoder.Locate(ctx, stores[i].Store)
			if err != nil {
				s.logger.Warn("geocoding failed", zap.String("store_id", stores[i].ID), zap.Error(err))
				return nil
			}
			if !ok {
				return nil
			}
			distance := domain.DistanceKm(origin, coords)
			stores[i].Coordinates = &coords
			stores[i].DistanceKm = &distance
			return nil
		})
	}
	_ = g.Wait()
}

func (s *storeQueryService) Detail(ctx context.Context, network, storeID, wallet string) (StoreDetailView, error) {
	if !session.ValidNetwork(network) {
		return StoreDetailView{}, ErrInvalidNetwork
	}
	id, err := domain.ParseStoreID(storeID)
	if err != nil {
		return StoreDetailView{}, err
	}

	var view StoreDetailView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		details, err := s.reader.GetStoreWithPrice(gctx, network, id)
		view.StoreDetails = details
		return err
	})
	if wallet != "" {
		g.Go(func() error {
			thanked, err := s.reader.HasUserThanked(gctx, network, id, wallet)
			if err != nil {
				s.logger.Warn("thanks lookup failed", zap.String("store_id", id), zap.Error(err))
				return nil
			}
			view.Thanked = thanked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StoreDetailView{}, err
	}

	view.Price = s.display(view.ID, view.CurrentPrice, s.now())
	return view, nil
}

// Preview returns the two cheapest priced stores. When the contract has no
// current prices it falls back to the first two stores with sample prices,
// and to an empty list when stores cannot be read either.
func (s *storeQueryService) Preview(ctx context.Context, network string) []domain.PreviewStore {
	if !session.ValidNetwork(network) {
		return []domain.PreviewStore{}
	}
	now := s.now()

	prices, err := s.reader.ListCurrentPrices(ctx, network)
	if err != nil {
		s.logger.Warn("preview prices unavailable, using sample prices", zap.String("network", network), zap.Error(err))
	}

	if err == nil && len(prices) > 0 {
		preview, err := s.cheapest(ctx, network, prices, now)
		if err == nil {
			return preview
		}
		s.logger.Warn("preview stores unavailable, using sample prices", zap.String("network", network), zap.Error(err))
	}

	stores, err := s.reader.ListStores(ctx, network)
	if err != nil {
		s.logger.Error("preview failed", zap.String("network", network), zap.Error(err))
		return []domain.PreviewStore{}
	}
	preview := make([]domain.PreviewStore, 0, previewSize)
	for i, store := range stores {
		if i >= len(previewFallbackCents) {
			break
		}
		preview = append(preview, domain.PreviewStore{
			Store: store,
			Price: domain.NewPriceDisplay(store.ID, previewFallbackCents[i], now.Unix(), now),
		})
	}
	return preview
}

func (s *storeQueryService) cheapest(ctx context.Context, network string, prices []domain.StorePrice, now time.Time) ([]domain.PreviewStore, error) {
	type priced struct {
		entry domain.StorePrice
		cents int64
	}
	candidates := make([]priced, 0, len(prices))
	for _, p := range prices {
		if !p.Price.IsSet() {
			continue
		}
		cents, err := p.Price.Cents()
		if err != nil {
			continue
		}
		candidates = append(candidates, priced{entry: p, cents: cents})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].cents < candidates[j].cents })
	if len(candidates) > previewSize {
		candidates = candidates[:previewSize]
	}

	stores, err := s.reader.ListStores(ctx, network)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Store, len(stores))
	for _, store := range stores {
		byID[store.ID] = store
	}

	preview := make([]domain.PreviewStore, 0, len(candidates))
	for _, c := range candidates {
		store, ok := byID[c.entry.StoreID]
		if !ok {
			continue
		}
		preview = append(preview, domain.PreviewStore{
			Store: store,
			Price: domain.NewPriceDisplay(c.entry.StoreID, c.cents, c.entry.Price.Timestamp, now),
		})
	}
	return preview, nil
}

func (s *storeQueryService) PriceHistory(ctx context.Context, network, storeID string) ([]domain.PriceDisplay, error) {
	if !session.ValidNetwork(network) {
		return nil, ErrInvalidNetwork
	}
	id, err := domain.ParseStoreID(storeID)
	if err != nil {
		return nil, err
	}
	history, err := s.reader.GetPriceHistory(ctx, network, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.PriceDisplay, 0, len(history))
	for _, p := range history {
		out = append(out, s.display(id, p, now))
	}
	return out, nil
}

func (s *storeQueryService) IsAdmin(ctx context.Context, user session.User) bool {
	if !user.Complete() {
		return false
	}
	return s.reader.IsAdmin(ctx, user.Network, user.WalletAddress)
}

func (s *storeQueryService) display(storeID string, price domain.Price, now time.Time) domain.PriceDisplay {
	cents, err := price.Cents()
	if err != nil {
		s.logger.Warn("price out of display range", zap.String("store_id", storeID), zap.Error(err))
		cents = 0
	}
	return domain.NewPriceDisplay(storeID, cents, price.Timestamp, now)
}
