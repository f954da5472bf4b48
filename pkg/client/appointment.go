package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"clinic/pkg/model"
)

const appointmentsPath = "/api/v1/appointments"

type AppointmentClient struct {
	httpClient *HttpClient
}

func NewAppointmentClient(baseURL string) *AppointmentClient {
	return &AppointmentClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *AppointmentClient) Create(ctx context.Context, body *model.AppointmentCreate) (*Response, error) {
	return c.httpClient.POST(ctx, appointmentsPath, body)
}

// CreateIdempotent retries safely: the server replays the first response
// for a repeated key.
func (c *AppointmentClient) CreateIdempotent(ctx context.Context, body *model.AppointmentCreate, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, appointmentsPath, body, map[string]string{"Idempotency-Key": key})
}

func (c *AppointmentClient) GetAll(ctx context.Context, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("%s?limit=%d&offset=%d", appointmentsPath, limit, offset)
	return c.httpClient.GET(ctx, path)
}

func (c *AppointmentClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, byID(id))
}

func (c *AppointmentClient) GetByDateRange(ctx context.Context, start, end string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	return c.httpClient.GET(ctx, appointmentsPath+"/range?"+q.Encode())
}

func (c *AppointmentClient) Update(ctx context.Context, id string, body *model.AppointmentUpdate) (*Response, error) {
	return c.httpClient.PATCH(ctx, byID(id), body)
}

func (c *AppointmentClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, byID(id))
}

func (c *AppointmentClient) Confirm(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.POST(ctx, byID(id)+"/confirm", nil)
}

func (c *AppointmentClient) Cancel(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.POST(ctx, byID(id)+"/cancel", nil)
}

func (c *AppointmentClient) Complete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.POST(ctx, byID(id)+"/complete", nil)
}

func (c *AppointmentClient) Reschedule(ctx context.Context, id string, body *model.AppointmentReschedule) (*Response, error) {
	return c.httpClient.POST(ctx, byID(id)+"/reschedule", body)
}

func (c *AppointmentClient) Stats(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, appointmentsPath+"/stats")
}

// Weekly lists the seven days from weekStart, or the current week when
// weekStart is empty.
func (c *AppointmentClient) Weekly(ctx context.Context, weekStart string) (*Response, error) {
	path := appointmentsPath + "/weekly"
	if weekStart != "" {
		path += "?week_start=" + url.QueryEscape(weekStart)
	}
	return c.httpClient.GET(ctx, path)
}

func (c *AppointmentClient) DecodeAppointment(resp *Response) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := decodeData(resp, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (c *AppointmentClient) DecodeAppointments(resp *Response) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := decodeData(resp, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (c *AppointmentClient) DecodeStats(resp *Response) (*model.AppointmentStats, error) {
	var stats model.AppointmentStats
	if err := decodeData(resp, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *AppointmentClient) DecodeWeekly(resp *Response) (*model.WeeklyAppointments, error) {
	var week model.WeeklyAppointments
	if err := decodeData(resp, &week); err != nil {
		return nil, err
	}
	return &week, nil
}

func byID(id string) string {
	return appointmentsPath + "/id/" + url.PathEscape(id)
}

func decodeData(resp *Response, target any) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper (status %d): %w", resp.StatusCode, err)
	}
	if len(wrapper.Data) == 0 {
		return fmt.Errorf("response has no data (status %d): %s", resp.StatusCode, GetErrorMessage(resp))
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data: %w", err)
	}
	return nil
}
