package directoryservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с DirectoryService
// Поставляет профили бизнесов, каталог услуг и ростер ресурсов;
// движок бронирования сам эти данные не хранит
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента DirectoryService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetBusiness получает профиль бизнеса с рабочими часами и индустрией
func (c *Client) GetBusiness(ctx context.Context, businessID int64) (*Business, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d", c.baseURL, businessID)

	var business Business
	if err := c.getJSON(ctx, url, &business, ErrBusinessNotFound); err != nil {
		return nil, err
	}
	return &business, nil
}

// GetService получает услугу бизнеса
func (c *Client) GetService(ctx context.Context, businessID, serviceID int64) (*Service, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/services/%d", c.baseURL, businessID, serviceID)

	var service Service
	if err := c.getJSON(ctx, url, &service, ErrServiceNotFound); err != nil {
		return nil, err
	}
	return &service, nil
}

// GetResources получает ростер ресурсов бизнеса с навыками и расписаниями
func (c *Client) GetResources(ctx context.Context, businessID int64) ([]Resource, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/resources", c.baseURL, businessID)

	var resources []Resource
	if err := c.getJSON(ctx, url, &resources, ErrBusinessNotFound); err != nil {
		return nil, err
	}
	return resources, nil
}

// getJSON выполняет GET запрос и декодирует JSON ответ
// notFound возвращается для статуса 404
func (c *Client) getJSON(ctx context.Context, url string, dest interface{}, notFound error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

// GetBusinessWithGracefulDegradation получает бизнес с graceful degradation
// При недоступности DirectoryService возвращает ErrServiceDegraded,
// позволяя read-only сценариям отвечать из денормализованных данных
func (c *Client) GetBusinessWithGracefulDegradation(ctx context.Context, businessID int64) (*Business, error) {
	business, err := c.GetBusiness(ctx, businessID)
	if err != nil {
		if err == ErrBusinessNotFound {
			return nil, err
		}
		c.log.Error("DirectoryService unavailable, applying graceful degradation for business_id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: business_id=%d, error=%v", ErrServiceDegraded, businessID, err)
	}
	return business, nil
}
