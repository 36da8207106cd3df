package httpx

import (
	"net/http"
	"strings"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/app"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type ProductCreateRequest struct {
	Type          domain.ProductType          `json:"type"`
	SellingStatus domain.ProductSellingStatus `json:"sellingStatus"`
	Name          string                      `json:"name"`
	Price         int                         `json:"price"`
}

// Validate returns the message of the first failing rule, or "".
func (r ProductCreateRequest) Validate() string {
	switch {
	case r.Type == "":
		return "상품 타입은 필수입니다."
	case r.SellingStatus == "":
		return "상품 판매상태는 필수입니다."
	case strings.TrimSpace(r.Name) == "":
		return "상품 이름은 필수입니다."
	case r.Price <= 0:
		return "상품 가격은 양수여야 합니다."
	}
	return ""
}

func (r ProductCreateRequest) toServiceRequest() app.ProductCreateServiceRequest {
	return app.ProductCreateServiceRequest{
		Type:          r.Type,
		SellingStatus: r.SellingStatus,
		Name:          r.Name,
		Price:         r.Price,
	}
}

type OrderCreateRequest struct {
	ProductNumbers []string `json:"productNumbers"`
}

func (r OrderCreateRequest) Validate() string {
	if len(r.ProductNumbers) == 0 {
		return "상품 번호 리스트는 필수입니다."
	}
	return ""
}

func (r OrderCreateRequest) toServiceRequest() app.OrderCreateServiceRequest {
	return app.OrderCreateServiceRequest{ProductNumbers: r.ProductNumbers}
}

type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// ApiResponse is the envelope of every response body.
type ApiResponse struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func newApiResponse(code int, message string, data any) ApiResponse {
	status := strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
	if message == "" {
		message = status
	}
	return ApiResponse{Code: code, Status: status, Message: message, Data: data}
}
