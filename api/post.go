package api

// TimeFormat is the ISO 8601 form used for timestamps on the wire
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

type Author struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Avatar string `json:"avatar"`
}

type Post struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	CoverImage string `json:"coverImage"`
	Category   string `json:"category"`
	Author     Author `json:"author"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
	Published  bool   `json:"published"`
}

// PostProto is the body of a create request. Format is "html" (default) or "markdown".
type PostProto struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Excerpt    string  `json:"excerpt"`
	CoverImage string  `json:"coverImage"`
	Category   string  `json:"category"`
	Author     *Author `json:"author"`
	Format     string  `json:"format"`
}

// PostPatch is the body of an update request. Absent fields are left unchanged;
// id, createdAt and updatedAt are not accepted.
type PostPatch struct {
	Title      *string `json:"title"`
	Slug       *string `json:"slug"`
	Excerpt    *string `json:"excerpt"`
	Content    *string `json:"content"`
	CoverImage *string `json:"coverImage"`
	Category   *string `json:"category"`
	Author     *Author `json:"author"`
	Published  *bool   `json:"published"`
	Format     string  `json:"format"`
}

type PostDetail struct {
	Post    Post   `json:"post"`
	Prev    *Post  `json:"prev"`
	Next    *Post  `json:"next"`
	Related []Post `json:"related"`
}

type DeleteResult struct {
	Success bool `json:"success"`
}

type TranslateRequest struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Excerpt      string `json:"excerpt"`
	Content      string `json:"content"`
	TargetLocale string `json:"targetLocale"`
}

type Translation struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
	Cached  bool   `json:"cached"`
}

// TranslationUnavailable is returned with 503 and carries the untranslated fields
type TranslationUnavailable struct {
	Error string `json:"error"`
	Translation
}

type TranslateHealth struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Message  string `json:"message,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
