// Package domain contains the core types of the category suggester.
package domain

// Category is a taxonomy row owned by the relational store. The suggester
// only ever reads these.
type Category struct {
	ID        int64   `db:"id"          json:"id"`
	NameAr    string  `db:"name_ar"     json:"name_ar"`
	NameKu    string  `db:"name_ku"     json:"name_ku"`
	URLPathAr string  `db:"url_path_ar" json:"url_path_ar"`
	URLPathKu string  `db:"url_path_ku" json:"url_path_ku"`
	IsLeaf    bool    `db:"is_leaf"     json:"is_leaf"`
	ParentID  *int64  `db:"parent_id"   json:"parent_id,omitempty"`
	Path      string  `db:"path"        json:"path,omitempty"`
}

// Name returns the display name for the given language.
func (c *Category) Name(lang Language) string {
	if lang == LanguageKurdish {
		return c.NameKu
	}
	return c.NameAr
}

// URLPath returns the URL path fragment for the given language.
func (c *Category) URLPath(lang Language) string {
	if lang == LanguageKurdish {
		return c.URLPathKu
	}
	return c.URLPathAr
}

// BrandModel is a brand or model row belonging to a leaf category.
type BrandModel struct {
	ID         int64  `db:"id"          json:"id"`
	CategoryID int64  `db:"category_id" json:"category_id"`
	NameEn     string `db:"name_en"     json:"name_en"`
	NameAr     string `db:"name_ar"     json:"name_ar"`
	NameKu     string `db:"name_ku"     json:"name_ku"`
	IsVariant  bool   `db:"is_variant"  json:"is_variant"`
}
