package domain

// PropertyType classifies a listed property.
type PropertyType string

const (
	PropertyTypeHouse       PropertyType = "HOUSE"
	PropertyTypeCondo       PropertyType = "CONDO"
	PropertyTypeTownhouse   PropertyType = "TOWNHOUSE"
	PropertyTypeMultiFamily PropertyType = "MULTI_FAMILY"
	PropertyTypeLand        PropertyType = "LAND"
	PropertyTypeApartment   PropertyType = "APARTMENT"
	PropertyTypeOther       PropertyType = "OTHER"
)

func (t PropertyType) String() string { return string(t) }

func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeCondo, PropertyTypeTownhouse, PropertyTypeMultiFamily,
		PropertyTypeLand, PropertyTypeApartment, PropertyTypeOther:
		return true
	}
	return false
}

// ListingStatus is the market state of a property.
type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "DRAFT"
	ListingStatusActive    ListingStatus = "ACTIVE"
	ListingStatusPending   ListingStatus = "PENDING"
	ListingStatusSold      ListingStatus = "SOLD"
	ListingStatusOffMarket ListingStatus = "OFF_MARKET"
)

func (s ListingStatus) String() string { return string(s) }

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusDraft, ListingStatusActive, ListingStatusPending, ListingStatusSold, ListingStatusOffMarket:
		return true
	}
	return false
}

// StorageProvider tags where an image file is hosted.
type StorageProvider string

const (
	StorageProviderS3       StorageProvider = "S3"
	StorageProviderGCS      StorageProvider = "GCS"
	StorageProviderAzure    StorageProvider = "AZURE"
	StorageProviderLocal    StorageProvider = "LOCAL"
	StorageProviderExternal StorageProvider = "EXTERNAL"
)

func (p StorageProvider) String() string { return string(p) }

func (p StorageProvider) IsValid() bool {
	switch p {
	case StorageProviderS3, StorageProviderGCS, StorageProviderAzure, StorageProviderLocal, StorageProviderExternal:
		return true
	}
	return false
}

// TraceEventType identifies the kind of event recorded in a property's trace log.
type TraceEventType string

const (
	TraceEventCreated     TraceEventType = "CREATED"
	TraceEventUpdated     TraceEventType = "UPDATED"
	TraceEventDeleted     TraceEventType = "DELETED"
	TraceEventPriceChange TraceEventType = "PRICE_CHANGE"
	TraceEventListed      TraceEventType = "LISTED"
	TraceEventSold        TraceEventType = "SOLD"
	TraceEventTaxUpdate   TraceEventType = "TAX_UPDATE"
	TraceEventNote        TraceEventType = "NOTE"
)

func (e TraceEventType) String() string { return string(e) }

func (e TraceEventType) IsValid() bool {
	switch e {
	case TraceEventCreated, TraceEventUpdated, TraceEventDeleted, TraceEventPriceChange,
		TraceEventListed, TraceEventSold, TraceEventTaxUpdate, TraceEventNote:
		return true
	}
	return false
}

// SortDirection is the ordering direction of a list query.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) String() string { return string(d) }

func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}
