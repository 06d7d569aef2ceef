package category

import "LunaroNews/internal/domain"

const expandInstructions = `Изискванията към текста:
- поне 800 думи, на български език;
- формат Markdown със заглавия от второ ниво (##) и кратки абзаци;
- въведение, основни факти, технически анализ, практически препоръки и заключение;
- не измисляй цитати и не добавяй връзки.

Заглавие: %s
Описание: %s
Съдържание: %s`

// Default returns the registry with the two closed categories of the site.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Profile{
		Key:   Cybersecurity,
		Label: LabelCybersecurity,
		Query: `cybersecurity OR "data breach" OR ransomware OR malware OR phishing OR "zero-day" OR vulnerability`,
		ExpandPrompt: "Ти си опитен журналист, пишещ за киберсигурност за българска аудитория. " +
			"Напиши подробна аналитична статия по новината по-долу, като обясниш заплахата, " +
			"засегнатите системи и как читателите да се защитят.\n\n" + expandInstructions,
		FallbackTags:     []string{"киберсигурност", "информационна сигурност", "кибератаки", "защита на данни"},
		FallbackKeywords: []string{"киберсигурност", "кибератака", "уязвимост", "защита на данни"},
		Authors: []domain.Persona{
			{Name: "Иван Петров", Bio: "Анализатор по киберсигурност с над 10 години опит в защитата на корпоративни мрежи."},
			{Name: "Мария Георгиева", Bio: "Специалист по реагиране на инциденти и изследовател на зловреден софтуер."},
			{Name: "Николай Димитров", Bio: "Етичен хакер и консултант по тестове за проникване."},
		},
	})
	r.Register(Profile{
		Key:   SEO,
		Label: LabelSEO,
		Query: `SEO OR "search engine optimization" OR "Google algorithm" OR "core update" OR "search ranking" OR "digital marketing"`,
		ExpandPrompt: "Ти си SEO експерт и автор за българска аудитория. " +
			"Напиши подробна практическа статия по новината по-долу, като обясниш какво се променя " +
			"и какви действия да предприемат собствениците на сайтове.\n\n" + expandInstructions,
		FallbackTags:     []string{"SEO", "оптимизация", "Google", "дигитален маркетинг"},
		FallbackKeywords: []string{"SEO", "оптимизация за търсачки", "Google", "класиране"},
		Authors: []domain.Persona{
			{Name: "Елена Стоянова", Bio: "SEO консултант, помагала на десетки български онлайн магазини да растат органично."},
			{Name: "Георги Иванов", Bio: "Специалист по техническо SEO и уеб производителност."},
			{Name: "Десислава Колева", Bio: "Контент стратег и автор на ръководства за дигитален маркетинг."},
		},
	})
	return r
}
