package utils

import (
	"encoding/json"
	"strings"

	"MedStore/internal/constants"
)

// NormalizeImageURLs приводит значение поля images к списку абсолютных URL.
// Поле могло быть записано по-разному (JSON-массив, JSON-строка, голая
// строка, значения в кавычках или скобках), поэтому сначала значения
// чистятся, затем относительные пути вида "products/..." дополняются
// адресом хранилища. Если после чистки не осталось ни одного изображения,
// возвращается заглушка.
func NormalizeImageURLs(images []string, baseURL string) []string {
	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.Trim(img, "\"[]\\/")
		if img == "" {
			continue
		}
		if strings.HasPrefix(img, "products/") || strings.HasPrefix(img, "testimonials/") {
			img = baseURL + "/storage/" + img
		}
		cleaned = append(cleaned, img)
	}
	if len(cleaned) == 0 {
		return []string{baseURL + "/storage/" + constants.PLACEHOLDER_IMAGE}
	}
	return cleaned
}

// ParseImagesField разбирает "сырое" значение поля images: JSON-массив,
// JSON-строка или просто строка с путем.
func ParseImagesField(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err == nil {
		return images
	}
	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil && single != "" {
		return []string{single}
	}
	return []string{raw}
}
