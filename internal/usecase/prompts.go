package usecase

import "fmt"

const (
	translatePrompt = "Преведи следния текст на български език. Върни само превода, без кавички и коментари.\n\n%s"
	summaryPrompt   = "Напиши кратко резюме от 2-3 изречения на български език за статията по-долу. Върни само резюмето.\n\n%s"
	seoPrompt       = "Създай SEO метаданни на български език за статията по-долу. " +
		"Отговори само с JSON обект във формат " +
		`{"title": "до 60 символа", "description": "до 160 символа", "keywords": ["ключова дума", "..."]}` +
		"\n\nЗаглавие: %s\n\nСтатия:\n%s"
	tagsPrompt = "Предложи между 5 и 7 кратки етикета на български език за статията по-долу. " +
		`Отговори само с JSON масив от низове, например ["етикет", "етикет"].` +
		"\n\nЗаглавие: %s\n\nСтатия:\n%s"
)

func buildTranslatePrompt(text string) string {
	return fmt.Sprintf(translatePrompt, text)
}

func buildSummaryPrompt(body string) string {
	return fmt.Sprintf(summaryPrompt, body)
}

func buildSEOPrompt(title, body string) string {
	return fmt.Sprintf(seoPrompt, title, body)
}

func buildTagsPrompt(title, body string) string {
	return fmt.Sprintf(tagsPrompt, title, body)
}

func buildExpandPrompt(template, title, description, content string) string {
	return fmt.Sprintf(template, title, description, content)
}
