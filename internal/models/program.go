package models

// Program запись каталога open-source программ (GSoC, Outreachy и т.п.).
// Каталог только для чтения, наполняется административно.
type Program struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
}
