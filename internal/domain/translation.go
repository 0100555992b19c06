package domain

import "time"

// Quality marks the provenance of a stored translation.
type Quality string

const (
	QualityAuto     Quality = "auto"
	QualityHuman    Quality = "human"
	QualityEdited   Quality = "edited"
	QualityReviewed Quality = "reviewed"
)

// Translation is a persisted result for one (content, field, language) key.
// History is append-only: a new translated value for the same key gets the
// next version and the previous current record has its flag flipped. At most
// one record per key carries IsCurrent=true.
type Translation struct {
	ID             string
	Content        ContentRef
	FieldName      string
	Language       string
	TranslatedText string

	SourceText     string
	SourceLanguage string
	Quality        Quality
	Confidence     *float64

	JobID *string

	Version   int
	IsCurrent bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
