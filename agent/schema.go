package agent

type FieldType string

const (
	FieldString      FieldType = "string"
	FieldStringArray FieldType = "string_array"
)

type SchemaField struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
}

// ResponseSchema describes the JSON object the text model must return.
// Generators translate it into a vendor schema hint; ParseDraft enforces it.
type ResponseSchema []SchemaField

func (s ResponseSchema) RequiredNames() []string {
	var out []string
	for _, f := range s {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

func (s ResponseSchema) OptionalNames() []string {
	var out []string
	for _, f := range s {
		if !f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// DraftSchema is the fixed contract for generated posts. tags is required:
// a response without it fails validation instead of producing an untagged post.
var DraftSchema = ResponseSchema{
	{Name: "title", Type: FieldString, Description: "The title of the blog post."},
	{Name: "content", Type: FieldString, Description: "The main content of the blog post, HTML or caption text.", Required: true},
	{Name: "tags", Type: FieldStringArray, Description: "List of tags for the post.", Required: true},
	{Name: "thumbnailIdeas", Type: FieldStringArray, Description: "List of descriptive ideas for thumbnails.", Required: true},
	{Name: "excerpt", Type: FieldString, Description: "A 2-3 sentence excerpt."},
	{Name: "metaDescription", Type: FieldString, Description: "A meta description for search engines."},
}
