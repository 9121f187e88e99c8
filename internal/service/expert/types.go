package expert

import (
	"monotributo-backend/internal/storage"
)

// AnswerEvent is one user answer as received from the frontend. Value is
// only present for numeric questions. JSON field names are part of the
// existing frontend contract.
type AnswerEvent struct {
	QuestionID string   `json:"pregunta_id"`
	Answer     string   `json:"respuesta"`
	Value      *float64 `json:"valor_numerico,omitempty"`
}

// InputKind tells the frontend how to render a question.
type InputKind string

const (
	InputOption InputKind = "opcion"
	InputNumber InputKind = "numero"
)

// Question is a prompt sent to the user. TextTemplate, when present,
// carries a single %s verb that gets the category-A maximum unit price
// interpolated from the current table; Text is the wording used when the
// table cannot provide the value.
type Question struct {
	ID           string    `json:"id" yaml:"id"`
	Text         string    `json:"texto" yaml:"text"`
	TextTemplate string    `json:"-" yaml:"text_template,omitempty"`
	Options      []string  `json:"opciones,omitempty" yaml:"options,omitempty"`
	Kind         InputKind `json:"tipo" yaml:"kind"`
}

// ResponseKind discriminates engine responses.
type ResponseKind string

const (
	ResponseQuestion ResponseKind = "pregunta"
	ResponseResult   ResponseKind = "resultado"
	ResponseError    ResponseKind = "error"
)

// AppliedRule is one step of the explanation trail.
type AppliedRule struct {
	Name        string `json:"regla"`
	Description string `json:"descripcion,omitempty"`
	Rationale   string `json:"justificacion,omitempty"`
}

// Response is what Answer produces: the next question, a terminal
// or final result, or a typed generation error. Error responses leave
// session state intact.
type Response struct {
	Kind     ResponseKind `json:"tipo"`
	Question *Question    `json:"pregunta,omitempty"`
	Message  string       `json:"mensaje,omitempty"`
	Details  *Details     `json:"detalles,omitempty"`
}

// Details accompanies result responses with the computed payment summary
// (final results only) and the applied-rule trail.
type Details struct {
	Result *FinalResult  `json:"resultado,omitempty"`
	Trail  []AppliedRule `json:"razonamiento_aplicado"`
}

// NationalPayments breaks down the monthly national amount. Pension and
// Health are nil when waived by concurrent dependent employment; Note
// explains the waiver.
type NationalPayments struct {
	Tax     float64  `json:"impuesto"`
	Pension *float64 `json:"sipa"`
	Health  *float64 `json:"obra_social"`
	Note    string   `json:"nota,omitempty"`
}

// RegionalPayments holds the provincial surcharge when one applies.
type RegionalPayments struct {
	Aref *float64 `json:"aref,omitempty"`
}

// FinalResult is the computed payment summary for the assigned category.
type FinalResult struct {
	Category        string           `json:"categoria"`
	Activity        storage.Activity `json:"tipo_actividad"`
	National        NationalPayments `json:"pagos_nacionales"`
	Regional        RegionalPayments `json:"pagos_provinciales"`
	TotalNational   float64          `json:"total_nacional"`
	TotalRegional   float64          `json:"total_provincial"`
	TotalGeneral    float64          `json:"total_general"`
	DependentWorker bool             `json:"en_relacion_dependencia"`
}
