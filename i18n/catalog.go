package i18n

import (
	"fmt"
	"strings"
)

// Catalog resolves a message key and positional args to a localized message.
type Catalog struct {
	messages map[string]map[string]string
}

func Default() *Catalog {
	return &Catalog{messages: map[string]map[string]string{
		"en": {
			"invalid_quantity":                   "Quantity must be greater than zero",
			"header_not_found":                   "Document not found",
			"line_not_found":                     "Document line not found",
			"import_line_not_found":              "Import line not found",
			"route_not_found":                    "Scan record not found",
			"line_serial_not_found":              "Line serial not found",
			"stock_yap_mismatch":                 "No order line matches stock %v / %v",
			"serial_not_match":                   "Serial %v does not match any order line",
			"quantity_exceeded":                  "Collected quantity would exceed the ordered quantity",
			"quantity_mismatch":                  "Collected quantity %v does not satisfy ordered quantity %v for stock %v",
			"all_order_items_must_be_collected":  "All order items must be collected before completion (stock %v)",
			"correlation_key_missing":            "Missing correlation key at level %v",
			"correlation_key_not_found":          "Correlation key %v at level %v does not resolve",
			"import_line_routes_exist":           "Import line still has scan records",
			"import_line_line_serials_exist":     "Linked line still has serial allocations",
			"line_line_serials_exist":            "Line still has serial allocations",
			"line_import_lines_exist":            "Line still has import lines",
			"line_serial_routes_exist":           "A scan record still carries serial %v",
			"insufficient_quantity_after_delete": "Remaining ordered quantity would drop below the collected quantity",
			"approval_update_error":              "Approval can only be decided once on a completed document pending approval",
			"already_completed":                  "Document is already completed",
			"invalid_credentials":                "Invalid email or password",
			"internal_error":                     "An unexpected error occurred",
			"completed_notification":             "Document %v has been completed",
		},
		"tr": {
			"invalid_quantity":                   "Miktar sıfırdan büyük olmalıdır",
			"header_not_found":                   "Belge bulunamadı",
			"line_not_found":                     "Belge satırı bulunamadı",
			"import_line_not_found":              "Okutma satırı bulunamadı",
			"route_not_found":                    "Okutma kaydı bulunamadı",
			"line_serial_not_found":              "Satır seri kaydı bulunamadı",
			"stock_yap_mismatch":                 "%v / %v stok koduna uyan sipariş satırı yok",
			"serial_not_match":                   "%v seri numarası hiçbir sipariş satırıyla eşleşmiyor",
			"quantity_exceeded":                  "Toplanan miktar sipariş miktarını aşıyor",
			"quantity_mismatch":                  "Toplanan miktar %v sipariş miktarı %v ile uyuşmuyor (stok %v)",
			"all_order_items_must_be_collected":  "Belge tamamlanmadan önce tüm sipariş kalemleri toplanmalıdır (%v)",
			"correlation_key_missing":            "%v seviyesinde eşleştirme anahtarı eksik",
			"correlation_key_not_found":          "%v anahtarı %v seviyesinde çözümlenemedi",
			"import_line_routes_exist":           "Okutma satırında hâlâ okutma kayıtları var",
			"import_line_line_serials_exist":     "Bağlı satırda hâlâ seri kayıtları var",
			"line_line_serials_exist":            "Satırda hâlâ seri kayıtları var",
			"line_import_lines_exist":            "Satırda hâlâ okutma satırları var",
			"line_serial_routes_exist":           "%v seri numarasını taşıyan okutma kaydı var",
			"insufficient_quantity_after_delete": "Kalan sipariş miktarı toplanan miktarın altına düşer",
			"approval_update_error":              "Onay yalnızca onay bekleyen tamamlanmış belgede bir kez verilebilir",
			"already_completed":                  "Belge zaten tamamlanmış",
			"invalid_credentials":                "E-posta veya şifre hatalı",
			"internal_error":                     "Beklenmeyen bir hata oluştu",
			"completed_notification":             "%v belgesi tamamlandı",
		},
	}}
}

// Resolve returns the localized message for key, falling back to English and
// finally to the key itself.
func (c *Catalog) Resolve(locale, key string, args ...interface{}) string {
	locale = normalize(locale)
	if m, ok := c.messages[locale]; ok {
		if tpl, ok := m[key]; ok {
			return sprintf(tpl, args)
		}
	}
	if tpl, ok := c.messages["en"][key]; ok {
		return sprintf(tpl, args)
	}
	return key
}

func sprintf(tpl string, args []interface{}) string {
	if len(args) == 0 {
		return tpl
	}
	return fmt.Sprintf(tpl, args...)
}

func normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_,;"); i > 0 {
		locale = locale[:i]
	}
	if locale == "" {
		return "en"
	}
	return locale
}
