package domain

// BrandModelEntry is the denormalized brand/model record embedded in a
// training document.
type BrandModelEntry struct {
	ID        int64  `json:"id"`
	NameEn    string `json:"name_en"`
	NameAr    string `json:"name_ar"`
	NameKu    string `json:"name_ku"`
	IsVariant bool   `json:"is_variant"`
}

// TrainingDocument is the per-category unit of truth for classification,
// stored in the document store keyed by category id. The example lists are
// operator-curated and must survive every resynchronization; everything
// else is rebuilt from the relational source.
type TrainingDocument struct {
	CategoryID int64             `json:"category_id"`
	NameAr     string            `json:"name_ar"`
	NameKu     string            `json:"name_ku"`
	URLPathAr  string            `json:"url_path_ar"`
	URLPathKu  string            `json:"url_path_ku"`
	IsLeaf     bool              `json:"is_leaf"`
	HasModels  bool              `json:"has_models"`
	Models     []BrandModelEntry `json:"models"`
	ExamplesAr []string          `json:"examples_ar"`
	ExamplesKu []string          `json:"examples_ku"`
}

// Name returns the display name for the given language.
func (d *TrainingDocument) Name(lang Language) string {
	if lang == LanguageKurdish {
		return d.NameKu
	}
	return d.NameAr
}

// URLPath returns the URL path fragment for the given language.
func (d *TrainingDocument) URLPath(lang Language) string {
	if lang == LanguageKurdish {
		return d.URLPathKu
	}
	return d.URLPathAr
}

// Examples returns the training example list for the given language.
func (d *TrainingDocument) Examples(lang Language) []string {
	if lang == LanguageKurdish {
		return d.ExamplesKu
	}
	return d.ExamplesAr
}
