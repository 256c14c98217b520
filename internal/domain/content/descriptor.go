// Package content implements the schema-parameterized CRUD engine shared by
// every managed collection. A Descriptor captures what differs between kinds
// (fields, required-on-create rules, normalization); the Service and the
// storage layer are written once against it.
package content

type Kind string

const (
	KindArticle   Kind = "article"
	KindEvent     Kind = "event"
	KindGallery   Kind = "gallery_image"
	KindOrgMember Kind = "org_member"
)

type FieldType string

const (
	// FieldText is a plain string stored verbatim.
	FieldText FieldType = "text"
	// FieldRichText is HTML sanitized before persistence.
	FieldRichText FieldType = "rich_text"
	// FieldTimestamp accepts RFC3339 or loose date strings and stores an instant.
	FieldTimestamp FieldType = "timestamp"
	// FieldAssetRef is a reference to an uploaded asset, stored verbatim.
	FieldAssetRef FieldType = "asset_ref"
)

type Field struct {
	Name     string // JSON name
	Column   string // database column
	Type     FieldType
	Required bool // must be present and non-empty on create
}

type Descriptor struct {
	Kind   Kind
	Path   string // URL segment under /api
	Table  string
	Fields []Field
}

func (d Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (d Descriptor) RequiredFields() []string {
	var names []string
	for _, f := range d.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Articles describes news posts. Each call returns a fresh value so
// callers cannot mutate a shared definition.
func Articles() Descriptor {
	return Descriptor{
		Kind:  KindArticle,
		Path:  "articles",
		Table: "posts",
		Fields: []Field{
			{Name: "title", Column: "title", Type: FieldText, Required: true},
			{Name: "excerpt", Column: "excerpt", Type: FieldText, Required: true},
			{Name: "body", Column: "body", Type: FieldRichText, Required: true},
			{Name: "coverImage", Column: "cover_image", Type: FieldAssetRef},
		},
	}
}

// Events describes school activities with a scheduled date.
func Events() Descriptor {
	return Descriptor{
		Kind:  KindEvent,
		Path:  "events",
		Table: "activities",
		Fields: []Field{
			{Name: "title", Column: "title", Type: FieldText, Required: true},
			{Name: "description", Column: "description", Type: FieldRichText, Required: true},
			{Name: "date", Column: "event_date", Type: FieldTimestamp, Required: true},
			{Name: "image", Column: "image", Type: FieldAssetRef},
		},
	}
}

// GalleryImages describes the photo gallery.
func GalleryImages() Descriptor {
	return Descriptor{
		Kind:  KindGallery,
		Path:  "gallery",
		Table: "gallery_images",
		Fields: []Field{
			{Name: "caption", Column: "caption", Type: FieldText, Required: true},
			{Name: "image", Column: "image", Type: FieldAssetRef, Required: true},
		},
	}
}

// OrgMembers describes the staff and organization roster.
func OrgMembers() Descriptor {
	return Descriptor{
		Kind:  KindOrgMember,
		Path:  "organization",
		Table: "org_members",
		Fields: []Field{
			{Name: "name", Column: "name", Type: FieldText, Required: true},
			{Name: "role", Column: "role", Type: FieldText, Required: true},
			{Name: "photo", Column: "photo", Type: FieldAssetRef},
		},
	}
}

// Descriptors returns every managed collection, in route registration order.
func Descriptors() []Descriptor {
	return []Descriptor{Articles(), Events(), GalleryImages(), OrgMembers()}
}
