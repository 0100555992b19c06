package domain

// ContentRef identifies the entity a translation belongs to without the
// service ever dereferencing it. Owning services keep their own schemas; this
// pair is the only coupling.
type ContentRef struct {
	ContentType string
	ObjectID    string
}

func (c ContentRef) String() string {
	return c.ContentType + "/" + c.ObjectID
}

func (c ContentRef) IsZero() bool {
	return c.ContentType == "" || c.ObjectID == ""
}
