package storage

// trainingDocumentsMapping is the index mapping for training documents.
// Keyword fields keep the localized names and URL fragments verbatim; the
// suggester does its own matching and never relies on ES analysis.
const trainingDocumentsMapping = `{
  "mappings": {
    "properties": {
      "category_id": {"type": "long"},
      "name_ar":     {"type": "keyword"},
      "name_ku":     {"type": "keyword"},
      "url_path_ar": {"type": "keyword"},
      "url_path_ku": {"type": "keyword"},
      "is_leaf":     {"type": "boolean"},
      "has_models":  {"type": "boolean"},
      "models": {
        "type": "object",
        "properties": {
          "id":         {"type": "long"},
          "name_en":    {"type": "keyword"},
          "name_ar":    {"type": "keyword"},
          "name_ku":    {"type": "keyword"},
          "is_variant": {"type": "boolean"}
        }
      },
      "examples_ar": {"type": "text"},
      "examples_ku": {"type": "text"}
    }
  }
}`

// Painless scripts for the array mutation primitives. They mutate only the
// models array (and the has-models flag derived from it), never the rest of
// the document.
const (
	appendModelScript = `if (ctx._source.models == null) { ctx._source.models = [] } ctx._source.models.add(params.model); ctx._source.has_models = true;`

	updateModelScript = `if (ctx._source.models != null) { for (int i = 0; i < ctx._source.models.size(); i++) { if (ctx._source.models[i].id == params.model_id) { ctx._source.models[i] = params.model } } }`

	removeModelScript = `if (ctx._source.models != null) { ctx._source.models.removeIf(m -> m.id == params.model_id); ctx._source.has_models = ctx._source.models.size() > 0; }`

	appendExampleScript = `if (ctx._source.%s == null) { ctx._source.%s = [] } ctx._source.%s.add(params.example);`
)
