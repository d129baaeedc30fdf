package dto

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope. Details carry the domain
// error's context (missing documents, violated quotas); Fields list the
// request fields that failed binding.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   map[string]any     `json:"details,omitempty"`
	Fields    []ValidationDetail `json:"fields,omitempty"`
}

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta describes one page of a list
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Paged wraps one page of items with its position in the full list
func Paged(items any, total int64, page PageQuery) Response {
	size := int64(page.PageSize)
	return Response{
		Success: true,
		Data:    items,
		Meta: &Meta{
			Total:      total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: int((total + size - 1) / size),
		},
	}
}

// Fail builds an error envelope
func Fail(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// WithDetails attaches structured context to an error envelope
func (r Response) WithDetails(details map[string]any) Response {
	if r.Error != nil && len(details) > 0 {
		r.Error.Details = details
	}
	return r
}

// Invalid is the 400 answer listing the rejected fields
func Invalid(requestID string, fields []ValidationDetail) Response {
	r := Fail(ErrCodeValidation, "Request validation failed", requestID)
	r.Error.Fields = fields
	return r
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageQuery is the page/page_size pair of list endpoints plus the
// free-text search over codes and names.
type PageQuery struct {
	Page     int
	PageSize int
	Search   string
}

// NewPageQuery clamps page to at least 1 and page size to 1..MaxPageSize,
// defaulting to DefaultPageSize.
func NewPageQuery(page, pageSize int, search string) PageQuery {
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return PageQuery{Page: max(page, 1), PageSize: pageSize, Search: search}
}
