package domain

// Change operations carried by a notification payload.
const (
	OperationInsert = "INSERT"
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"
)

// Notification channels the relational store publishes on.
const (
	ChannelCategoryChanges   = "category_changes"
	ChannelBrandModelChanges = "brand_model_changes"
)

// CategoryChange is the decoded payload of a category change notification.
type CategoryChange struct {
	Operation  string `json:"operation"`
	CategoryID int64  `json:"category_id"`
}

// BrandModelChange is the decoded payload of a brand/model change
// notification. The row fields are carried inline so that incremental
// handling does not need a round trip to the relational store.
type BrandModelChange struct {
	Operation  string `json:"operation"`
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	NameEn     string `json:"name_en"`
	NameAr     string `json:"name_ar"`
	NameKu     string `json:"name_ku"`
	IsVariant  bool   `json:"is_variant"`
}

// Entry converts the change payload into the embedded document record.
func (c *BrandModelChange) Entry() BrandModelEntry {
	return BrandModelEntry{
		ID:        c.ID,
		NameEn:    c.NameEn,
		NameAr:    c.NameAr,
		NameKu:    c.NameKu,
		IsVariant: c.IsVariant,
	}
}
