package utils

import (
	"reflect"
	"testing"
)

const testBaseURL = "http://example.test"

func TestNormalizeImageURLs(t *testing.T) {
	cases := []struct {
		name   string
		in     []string
		expect []string
	}{
		{
			name:   "относительный путь дополняется адресом хранилища",
			in:     []string{"products/abc.png"},
			expect: []string{"http://example.test/storage/products/abc.png"},
		},
		{
			name:   "аватары отзывов тоже",
			in:     []string{"testimonials/ava.jpg"},
			expect: []string{"http://example.test/storage/testimonials/ava.jpg"},
		},
		{
			name:   "кавычки и скобки срезаются",
			in:     []string{`["products/abc.png"]`},
			expect: []string{"http://example.test/storage/products/abc.png"},
		},
		{
			name:   "абсолютный URL не трогается",
			in:     []string{"http://cdn.example.test/img.png"},
			expect: []string{"http://cdn.example.test/img.png"},
		},
		{
			name:   "пустой список дает заглушку",
			in:     nil,
			expect: []string{"http://example.test/storage/placeholder.png"},
		},
		{
			name:   "пустые значения отбрасываются",
			in:     []string{"", `""`},
			expect: []string{"http://example.test/storage/placeholder.png"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeImageURLs(tc.in, testBaseURL)
			if !reflect.DeepEqual(got, tc.expect) {
				t.Fatalf("получено %v, ожидалось %v", got, tc.expect)
			}
		})
	}
}

func TestParseImagesField(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		expect []string
	}{
		{"JSON-массив", `["products/a.png","products/b.png"]`, []string{"products/a.png", "products/b.png"}},
		{"JSON-строка", `"products/a.png"`, []string{"products/a.png"}},
		{"голая строка", "products/a.png", []string{"products/a.png"}},
		{"пустое значение", "", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseImagesField(tc.in)
			if !reflect.DeepEqual(got, tc.expect) {
				t.Fatalf("получено %v, ожидалось %v", got, tc.expect)
			}
		})
	}
}
