package usecase

import (
	"github.com/gaze-network/ticket-integrity/core/ledger"
)

// Section names a part of a summary that may be missing when its ledger read failed.
type Section string

const (
	SectionTiers     Section = "tiers"
	SectionListings  Section = "listings"
	SectionMarket    Section = "market"
	SectionSales     Section = "sales"
	SectionRoyalties Section = "royalties"
)

type Usecase struct {
	reader       ledger.Reader
	defaultImage string
}

func New(reader ledger.Reader, defaultImage string) *Usecase {
	return &Usecase{
		reader:       reader,
		defaultImage: defaultImage,
	}
}
