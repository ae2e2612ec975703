package i18n

const (
	English = "English"
	Russian = "Русский"
)

var translations = map[string]map[string]string{
	English: {
		"title":               "📌 To-Do List",
		"new_todo":            "New todo",
		"add_todo":            "Add",
		"description":         "Description",
		"due_date":            "Due date",
		"title_label":         "Title",
		"save":                "Save",
		"cancel":              "Cancel",
		"done":                "Done",
		"redo":                "Redo",
		"edit":                "Edit",
		"delete":              "Delete",
		"no_description":      "*No description*",
		"due_prefix":          "Due",
		"table_warning":       "Create table from admin sidebar",
		"admin":               "Admin",
		"create_table":        "Create table",
		"table_created":       "Todo table created successfully!",
		"session_state_debug": "Session State Debug",
		"new_task_subheader":  "📌 New todo",
		"settings":            "Settings",
		"language_label":      "Language",
		"export":              "Export",
		"title_empty_create":  "Title empty, not adding todo",
		"title_empty_update":  "Title cannot be empty",
		"invalid_due_date":    "Invalid due date, use YYYY-MM-DD",
		"created":             "Created",
	},
	Russian: {
		"title":               "📌 Список дел",
		"new_todo":            "Новая задача",
		"add_todo":            "Добавить",
		"description":         "Описание",
		"due_date":            "Срок",
		"title_label":         "Заголовок",
		"save":                "Сохранить",
		"cancel":              "Отмена",
		"done":                "Выполнено",
		"redo":                "Вернуть",
		"edit":                "Редактировать",
		"delete":              "Удалить",
		"no_description":      "*Нет описания*",
		"due_prefix":          "Срок",
		"table_warning":       "Создайте таблицу через админ-панель",
		"admin":               "Админ",
		"create_table":        "Создать таблицу",
		"table_created":       "Таблица успешно создана!",
		"session_state_debug": "Отладка состояния сессии",
		"new_task_subheader":  "📌 Новая задача",
		"settings":            "Настройки",
		"language_label":      "Язык",
		"export":              "Экспорт",
		"title_empty_create":  "Заголовок пуст, задача не добавлена",
		"title_empty_update":  "Заголовок не может быть пустым",
		"invalid_due_date":    "Неверный срок, формат YYYY-MM-DD",
		"created":             "Создано",
	},
}

// Resolve maps a (language, key) pair to its display string. Unknown
// languages and missing keys fall back to the English table; a key absent
// there too comes back unchanged.
func Resolve(lang, key string) string {
	table, ok := translations[lang]
	if !ok {
		table = translations[English]
	}
	if value, ok := table[key]; ok {
		return value
	}
	if value, ok := translations[English][key]; ok {
		return value
	}
	return key
}

// Languages returns the supported languages in selector order.
func Languages() []string {
	return []string{English, Russian}
}

// Known reports whether lang is a supported display language.
func Known(lang string) bool {
	_, ok := translations[lang]
	return ok
}
