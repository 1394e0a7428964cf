package importer

import (
	"context"
	"strings"

	"github.com/sotuphap-angiang/vbtrack/internal/models"
)

// AgencyStore is the part of Store the resolver needs.
type AgencyStore interface {
	FindAgencyByName(ctx context.Context, name string) (*models.Agency, error)
	CreateAgency(ctx context.Context, name string) (*models.Agency, error)
}

// AgencyResolver maps agency names to ids, creating agencies on first
// sight. One resolver belongs to one import run and is not safe for
// concurrent use: its cache is what keeps a name from being created twice.
type AgencyResolver struct {
	store   AgencyStore
	log     *runLog
	cache   map[string]uint
	created int
}

func newAgencyResolver(store AgencyStore, log *runLog) *AgencyResolver {
	return &AgencyResolver{
		store: store,
		log:   log,
		cache: make(map[string]uint),
	}
}

// Resolve returns the id of the agency called name, or nil when name is blank
// or the agency could not be created.
func (r *AgencyResolver) Resolve(ctx context.Context, name string) *uint {
	key := strings.TrimSpace(name)
	if key == "" {
		return nil
	}
	if id, ok := r.cache[key]; ok {
		return &id
	}

	existing, err := r.store.FindAgencyByName(ctx, key)
	if err != nil {
		r.log.warnf("⚠️ Could not look up agency %s: %v", key, err)
	}
	if existing != nil {
		r.cache[key] = existing.ID
		id := existing.ID
		return &id
	}

	created, err := r.store.CreateAgency(ctx, key)
	if err != nil || created == nil {
		r.log.warnf("⚠️ Could not create agency: %s", key)
		if err != nil {
			r.log.entry.WithError(err).WithField("agency", key).Warn("agency create failed")
		}
		return nil
	}
	r.cache[key] = created.ID
	r.created++
	id := created.ID
	return &id
}

// Len is the number of distinct agencies resolved so far.
func (r *AgencyResolver) Len() int { return len(r.cache) }

// Created is the number of agencies this resolver inserted.
func (r *AgencyResolver) Created() int { return r.created }
