package constants

// Роли пользователей
// User roles
const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// Параметры чата
// Chat parameters
const (
	// CHAT_PAGE_SIZE - размер страницы при выдаче сообщений (окно от новых к старым).
	CHAT_PAGE_SIZE = 20

	// CHAT_MAX_WAIT_SECONDS - максимальное время ожидания для long-poll запросов.
	CHAT_MAX_WAIT_SECONDS = 30
)

// Загрузка медиафайлов
const (
	// MAX_UPLOAD_SIZE - лимит multipart-формы (32 МБ).
	MAX_UPLOAD_SIZE = 32 << 20

	MEDIA_DIR_PRODUCTS     = "products"
	MEDIA_DIR_TESTIMONIALS = "testimonials"

	// PLACEHOLDER_IMAGE - файл-заглушка, когда у товара нет изображений.
	PLACEHOLDER_IMAGE = "placeholder.png"
)

// Статусы обращений (inquiries)
const (
	INQUIRY_STATUS_NEW       = "new"
	INQUIRY_STATUS_PROCESSED = "processed"
)
