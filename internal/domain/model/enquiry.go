package model

import "time"

// Направления услуг, доступные в форме обратной связи.
const (
	ServiceSolar   = "solar"
	ServiceTelecom = "telecom"
	ServiceHR      = "hr"
	ServiceGeneral = "general"
)

// ServiceTypes — допустимые значения service_type в порядке отображения.
var ServiceTypes = []string{ServiceSolar, ServiceTelecom, ServiceHR, ServiceGeneral}

// Enquiry — заявка с формы обратной связи.
// Хранится в таблице enquiries.
type Enquiry struct {
	// ID — UUID записи (назначается PostgreSQL)
	ID string
	// Name — имя отправителя
	Name string
	// Email — адрес в нижнем регистре
	Email string
	// Phone — 10 цифр без кода страны и разделителей
	Phone string
	// ServiceType — направление услуг (solar, telecom, hr, general)
	ServiceType string
	// Message — текст заявки
	Message string
	// Language — тег языка интерфейса (en, te)
	Language string
	// ResumeURL — ссылка на резюме (nil, если резюме не приложено)
	ResumeURL *string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}

// EnquiryFilter — параметры выборки заявок в админке.
type EnquiryFilter struct {
	// Query — подстрока поиска по имени, email, телефону, тексту и направлению
	Query string
	// ServiceType — фильтр по направлению (пусто — все)
	ServiceType string
	// Since — нижняя граница created_at (nil — без ограничения)
	Since *time.Time
}
