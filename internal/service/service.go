// Package service joins the registry with the report and placeholder fillers.
// The CLI and the HTTP server both go through it.
package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"koken-report/internal/config"
	"koken-report/internal/exporter"
	"koken-report/internal/logger"
	"koken-report/internal/model"
	"koken-report/internal/placeholder"
	"koken-report/internal/report"
	"koken-report/internal/store"
)

// Registry is the read side of the person registry
type Registry interface {
	GetPerson(id string) (model.PersonRecord, error)
	ListPersons() ([]model.PersonRecord, error)
	ListAssets(personID string) ([]model.AssetRecord, error)
	ListActivities(personID string) ([]model.ActivityRecord, error)
	ListRelatedParties(personID string) ([]model.RelatedPartyRecord, error)
	GetGuardian() (model.GuardianRecord, error)
}

// Service generates documents for persons held in a Registry
type Service struct {
	cfg      *config.Config
	registry Registry
	filler   *report.Filler
	now      func() time.Time
}

// New creates a Service. now may be nil to use time.Now.
func New(cfg *config.Config, registry Registry, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		cfg:      cfg,
		registry: registry,
		filler:   report.NewFiller(cfg.Layout, report.WithClock(now)),
		now:      now,
	}
}

// Document is a generated file ready to be saved or sent
type Document struct {
	FileName string
	Data     []byte
	Person   model.PersonRecord
	Result   *report.Result
}

// guardian returns the registered guardian, or an empty one when none is set
func (s *Service) guardian() (model.GuardianRecord, error) {
	g, err := s.registry.GetGuardian()
	if errors.Is(err, store.ErrNotFound) {
		logger.LogSkip("guardian", "no system user registered, guardian cells stay empty")
		return model.GuardianRecord{}, nil
	}
	return g, err
}

// PeriodicReport fills the configured periodic report template for one person
func (s *Service) PeriodicReport(personID string) (*Document, error) {
	person, err := s.registry.GetPerson(personID)
	if err != nil {
		return nil, err
	}
	assets, err := s.registry.ListAssets(personID)
	if err != nil {
		return nil, err
	}
	guardian, err := s.guardian()
	if err != nil {
		return nil, err
	}

	data, res, err := s.filler.GenerateWithResult(person, guardian, assets, s.cfg.Template.Path)
	if err != nil {
		return nil, err
	}
	return &Document{
		FileName: filepath.Base(s.cfg.GetOutputPath(person.ID, person.Name)),
		Data:     data,
		Person:   person,
		Result:   res,
	}, nil
}

// FillTemplate substitutes {{key}} tokens of an arbitrary template with the
// person's fields, today's date and the guardian's fields.
func (s *Service) FillTemplate(personID, templateName string, template []byte) (*Document, error) {
	person, err := s.registry.GetPerson(personID)
	if err != nil {
		return nil, err
	}
	guardian, err := s.guardian()
	if err != nil {
		return nil, err
	}

	record := placeholder.RecordFor(person, &guardian, s.now())
	data, err := placeholder.Fill(templateName, template, record)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(templateName)
	if ext == "" {
		ext = ".xlsx"
	}
	base := templateName[:len(templateName)-len(filepath.Ext(templateName))]
	return &Document{
		FileName: fmt.Sprintf("%s_%s%s", filepath.Base(base), person.ID, ext),
		Data:     data,
		Person:   person,
	}, nil
}

// Ledger takes a snapshot of the whole registry for export
func (s *Service) Ledger() (*exporter.Ledger, error) {
	persons, err := s.registry.ListPersons()
	if err != nil {
		return nil, err
	}

	ledger := &exporter.Ledger{
		Persons:        persons,
		Activities:     make(map[string][]model.ActivityRecord, len(persons)),
		Assets:         make(map[string][]model.AssetRecord, len(persons)),
		RelatedParties: make(map[string][]model.RelatedPartyRecord, len(persons)),
		Date:           s.now().Format("2006-01-02"),
	}
	for _, p := range persons {
		activities, err := s.registry.ListActivities(p.ID)
		if err != nil {
			return nil, err
		}
		ledger.Activities[p.ID] = activities

		assets, err := s.registry.ListAssets(p.ID)
		if err != nil {
			return nil, err
		}
		ledger.Assets[p.ID] = assets

		related, err := s.registry.ListRelatedParties(p.ID)
		if err != nil {
			return nil, err
		}
		ledger.RelatedParties[p.ID] = related
	}

	g, err := s.registry.GetGuardian()
	switch {
	case err == nil:
		ledger.Guardian = &g
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	return ledger, nil
}

// Persons lists every registered person
func (s *Service) Persons() ([]model.PersonRecord, error) {
	return s.registry.ListPersons()
}

// Config returns the configuration the service was built with
func (s *Service) Config() *config.Config {
	return s.cfg
}
