package tusdatos

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Document types accepted by the API.
const (
	DocTypeCC  = "CC"  // cédula de ciudadanía
	DocTypeCE  = "CE"  // cédula de extranjería
	DocTypeNIT = "NIT" // company tax id
	DocTypePP  = "PP"  // passport
	DocTypePPT = "PPT" // temporary protection permit
)

// Status values reported by Results.
const (
	JobStatusFinished   = "finalizado"
	JobStatusProcessing = "procesando"
	JobStatusError      = "error"
)

// Document is an identity or tax number. The API sends and accepts these as
// JSON numbers; Document marshals as a number when it is a plain integer and
// unmarshals from either a number or a string.
type Document string

// MarshalJSON implements json.Marshaler
func (d Document) MarshalJSON() ([]byte, error) {
	s := string(d)
	if isPlainInteger(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Document) UnmarshalJSON(data []byte) error {
	s, err := looseString(data)
	if err != nil {
		return fmt.Errorf("document: %w", err)
	}
	*d = Document(s)
	return nil
}

// String returns the document number
func (d Document) String() string {
	return string(d)
}

// isPlainInteger reports whether s is a non-negative integer without leading
// zeros that round-trips through a JSON number.
func isPlainInteger(s string) bool {
	if s == "" || len(s) > 15 {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// Text is a string field the API sometimes sends as a number or boolean.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	s, err := looseString(data)
	if err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

func looseString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{':
		return "", &json.UnmarshalTypeError{Value: "object", Type: reflect.TypeOf("")}
	case '[':
		return "", &json.UnmarshalTypeError{Value: "array", Type: reflect.TypeOf("")}
	default:
		// numbers and booleans keep their literal form
		return string(data), nil
	}
}

// Object is an untyped JSON object, used where the API does not publish a
// stable schema.
type Object = map[string]any

// decodeView decodes a JSON object into raw and, best effort, into view.
// Fields of view whose JSON type does not match are left zero; the full
// object is always kept in raw.
func decodeView(data []byte, view any) (Object, error) {
	var raw Object
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, view); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
	}
	return raw, nil
}

// encodeView marshals raw when the value was decoded from the API, so
// keys without a typed field survive a round trip.
func encodeView(raw Object, view any) ([]byte, error) {
	if raw != nil {
		return json.Marshal(raw)
	}
	return json.Marshal(view)
}

// StartQueryRequest launches a background check for a person.
type StartQueryRequest struct {
	Document Document `json:"doc"`
	DocType  string   `json:"typedoc"`
	// IssueDate is the document issue date, dd/mm/yyyy. Optional.
	IssueDate string `json:"fechaE,omitempty"`
	// Force skips the API's cache of recent results.
	Force bool `json:"force,omitempty"`
	// Webhook receives the result when the job finishes. Production only.
	Webhook string `json:"webhook,omitempty"`
}

// Validate checks required fields
func (r StartQueryRequest) Validate() error {
	if r.Document == "" {
		return missingField("doc")
	}
	if r.DocType == "" {
		return missingField("typedoc")
	}
	return nil
}

// RetryRequest re-runs the failed sources of a previous job.
type RetryRequest struct {
	ID      string
	DocType string
}

// Validate checks required fields
func (r RetryRequest) Validate() error {
	if r.ID == "" {
		return missingField("id")
	}
	if r.DocType == "" {
		return missingField("typedoc")
	}
	return nil
}

// VehicleQueryRequest launches a check of a vehicle and its owner.
type VehicleQueryRequest struct {
	OwnerDocument Document `json:"doc"`
	DocType       string   `json:"typedoc"`
	Plate         string   `json:"placa"`
}

// Validate checks required fields
func (r VehicleQueryRequest) Validate() error {
	if r.OwnerDocument == "" {
		return missingField("doc")
	}
	if r.DocType == "" {
		return missingField("typedoc")
	}
	if r.Plate == "" {
		return missingField("placa")
	}
	return nil
}

// VerifyRequest checks a person's identity against the civil registry.
type VerifyRequest struct {
	Document  Document `json:"doc"`
	DocType   string   `json:"typedoc"`
	IssueDate string   `json:"fechaE"`
}

// Validate checks required fields
func (r VerifyRequest) Validate() error {
	if r.Document == "" {
		return missingField("doc")
	}
	if r.DocType == "" {
		return missingField("typedoc")
	}
	if r.IssueDate == "" {
		return missingField("fechaE")
	}
	return nil
}

// VerifyNITRequest checks a company by its NIT.
type VerifyNITRequest struct {
	NIT Document `json:"nit"`
}

// Validate checks required fields
func (r VerifyNITRequest) Validate() error {
	if r.NIT == "" {
		return missingField("nit")
	}
	return nil
}

// LaunchResponse is returned by StartQuery and VehicleQuery.
type LaunchResponse struct {
	Email     string   `json:"email,omitempty"`
	Document  Document `json:"doc"`
	DocType   string   `json:"typedoc"`
	JobID     string   `json:"jobid,omitempty"`
	Name      string   `json:"nombre,omitempty"`
	Validated bool     `json:"validado"`
	// ID is set instead of JobID when the API answers from a cached result.
	ID string `json:"id,omitempty"`

	// Raw is the full response object.
	Raw Object `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *LaunchResponse) UnmarshalJSON(data []byte) error {
	type view LaunchResponse
	var v view
	raw, err := decodeView(data, &v)
	if err != nil {
		return err
	}
	*r = LaunchResponse(v)
	r.Raw = raw
	return nil
}

func (r *LaunchResponse) rawObject() Object {
	if r == nil {
		return nil
	}
	return r.Raw
}

// MarshalJSON implements json.Marshaler
func (r LaunchResponse) MarshalJSON() ([]byte, error) {
	type view LaunchResponse
	return encodeView(r.Raw, view(r))
}

// JobRef returns the identifier to poll with Results.
func (r *LaunchResponse) JobRef() string {
	if r.JobID != "" {
		return r.JobID
	}
	return r.ID
}

// JobResult is the status and aggregated result of a job. The typed fields
// are a view over Raw, which holds the response exactly as decoded.
type JobResult struct {
	ID            string   `json:"id"`
	Document      Document `json:"cedula"`
	DocType       string   `json:"typedoc"`
	Name          string   `json:"nombre"`
	Status        string   `json:"estado"`
	Error         bool     `json:"error"`
	Errors        []any    `json:"errores"`
	HasFindings   bool     `json:"hallazgo"`
	FindingsLevel string   `json:"hallazgos"`
	// Sources maps each consulted source to its outcome, usually a bool.
	Sources   map[string]any `json:"results"`
	Elapsed   float64        `json:"time"`
	Validated bool           `json:"validado"`

	// Raw is the full response object.
	Raw Object `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *JobResult) UnmarshalJSON(data []byte) error {
	type view JobResult
	var v view
	raw, err := decodeView(data, &v)
	if err != nil {
		return err
	}
	*r = JobResult(v)
	r.Raw = raw
	return nil
}

func (r *JobResult) rawObject() Object {
	if r == nil {
		return nil
	}
	return r.Raw
}

// MarshalJSON implements json.Marshaler
func (r JobResult) MarshalJSON() ([]byte, error) {
	type view JobResult
	return encodeView(r.Raw, view(r))
}

// IsFinished checks if the job has completed
func (r *JobResult) IsFinished() bool {
	return strings.EqualFold(r.Status, JobStatusFinished)
}

// HasFailedSources checks if any source failed and can be retried
func (r *JobResult) HasFailedSources() bool {
	return r.Error || len(r.Errors) > 0
}

// SourceNames returns the consulted source names in sorted order
func (r *JobResult) SourceNames() []string {
	names := make([]string, 0, len(r.Sources))
	for name := range r.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PersonData is the civil registry record returned by LaunchVerify.
type PersonData struct {
	NUIP           Document `json:"nuip"`
	FirstName      string   `json:"primer_nombre"`
	MiddleName     string   `json:"segundo_nombre"`
	FirstSurname   string   `json:"primer_apellido"`
	SecondSurname  string   `json:"segundo_apellido"`
	IssueDate      string   `json:"fecha_expedicion,omitempty"`
	IssuePlace     string   `json:"lugar_expedicion,omitempty"`
	DocumentStatus string   `json:"estado,omitempty"`
}

// FullName joins the non-empty name parts
func (p *PersonData) FullName() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.FirstName, p.MiddleName, p.FirstSurname, p.SecondSurname} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// VerifyResponse is returned by LaunchVerify.
type VerifyResponse struct {
	Data     PersonData `json:"data"`
	Findings []string   `json:"findings"`
	Status   Text       `json:"status"`

	// Raw is the full response object.
	Raw Object `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *VerifyResponse) UnmarshalJSON(data []byte) error {
	type view VerifyResponse
	var v view
	raw, err := decodeView(data, &v)
	if err != nil {
		return err
	}
	*r = VerifyResponse(v)
	r.Raw = raw
	return nil
}

func (r *VerifyResponse) rawObject() Object {
	if r == nil {
		return nil
	}
	return r.Raw
}

// MarshalJSON implements json.Marshaler
func (r VerifyResponse) MarshalJSON() ([]byte, error) {
	type view VerifyResponse
	return encodeView(r.Raw, view(r))
}

// OK reports whether the API accepted the verification
func (r *VerifyResponse) OK() bool {
	return strings.EqualFold(string(r.Status), "true")
}

// CompanyData is the chamber-of-commerce record returned by LaunchVerifyNIT.
type CompanyData struct {
	NIT                 Document `json:"nit"`
	BusinessName        string   `json:"razon_social"`
	Status              string   `json:"estado"`
	Type                string   `json:"tipo"`
	RegistryCategory    string   `json:"categoria_matricula"`
	IdentificationClass string   `json:"clase_identificacion"`
	Chamber             string   `json:"nombre_camara"`
}

// VerifyNITResponse is returned by LaunchVerifyNIT.
type VerifyNITResponse struct {
	Data     CompanyData `json:"data"`
	Findings []string    `json:"findings"`
	Status   Text        `json:"status"`

	// Raw is the full response object.
	Raw Object `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *VerifyNITResponse) UnmarshalJSON(data []byte) error {
	type view VerifyNITResponse
	var v view
	raw, err := decodeView(data, &v)
	if err != nil {
		return err
	}
	*r = VerifyNITResponse(v)
	r.Raw = raw
	return nil
}

func (r *VerifyNITResponse) rawObject() Object {
	if r == nil {
		return nil
	}
	return r.Raw
}

// MarshalJSON implements json.Marshaler
func (r VerifyNITResponse) MarshalJSON() ([]byte, error) {
	type view VerifyNITResponse
	return encodeView(r.Raw, view(r))
}

// OK reports whether the API accepted the verification
func (r *VerifyNITResponse) OK() bool {
	return strings.EqualFold(string(r.Status), "true")
}

// Report is a structured report returned by ReportJSON. Its keys depend on
// the sources consulted.
type Report map[string]any

// HistoryEntry is one past query returned by QueryHistory.
type HistoryEntry map[string]any

// ID returns the job id of the entry, if present
func (e HistoryEntry) ID() string {
	for _, key := range []string{"id", "jobid"} {
		if v, ok := e[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// History is the list of past queries. The API returns either a bare array or
// an object wrapping it under "data".
type History []HistoryEntry

// UnmarshalJSON implements json.Unmarshaler
func (h *History) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*h = nil
		return nil
	}

	if data[0] == '[' {
		var entries []HistoryEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		*h = entries
		return nil
	}

	var wrapper struct {
		Data []HistoryEntry `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Data != nil {
		*h = wrapper.Data
		return nil
	}

	var single HistoryEntry
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*h = History{single}
	return nil
}
