package handlers

import (
	"github.com/rs/zerolog"

	"github.com/NathanielMuller/ScanShelf/internal/catalog"
	"github.com/NathanielMuller/ScanShelf/internal/journal"
)

var (
	catalogSvc *catalog.Service
	journalSvc *journal.Service
	logger     zerolog.Logger
)

func SetCatalogService(s *catalog.Service) {
	catalogSvc = s
}

func SetJournalService(s *journal.Service) {
	journalSvc = s
}

func SetLogger(l zerolog.Logger) {
	logger = l
}
