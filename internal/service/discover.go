package service

import (
	"context"
	"log"

	"floorlink/internal/catalog"
	"floorlink/internal/discovery"
	"floorlink/internal/domain"
)

// AddHosts places one item per newly discovered host and returns the items
// added. Hosts whose address is already on the plan are skipped.
func (s *Session) AddHosts(ctx context.Context, hosts []discovery.Host) ([]domain.Item, error) {
	var placed []domain.Item
	err := s.Do(ctx, func() error {
		placed = discovery.Items(s.catalog, hosts, s.store.Get().Items, catalog.DefaultGrid())
		for _, item := range placed {
			s.store.Add(item)
		}
		return nil
	})
	if err == nil {
		log.Printf("Session: discovery added %d of %d hosts", len(placed), len(hosts))
	}
	return placed, err
}

// Discover runs scanner and adds what it finds.
func (s *Session) Discover(ctx context.Context, scanner *discovery.Scanner) ([]domain.Item, error) {
	hosts, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return s.AddHosts(ctx, hosts)
}
