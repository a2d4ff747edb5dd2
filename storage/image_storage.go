package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ImageStorage uploads car and profile images to the external image CDN
// and returns the public URL the CDN serves them from. The CDN handles
// resizing and format conversion on its side.
type ImageStorage struct {
	client  *http.Client
	baseURL string
	logger  *logrus.Logger
	tracer  trace.Tracer
	cb      *gobreaker.CircuitBreaker
}

type uploadResponse struct {
	URL string `json:"url"`
}

func New(baseURL string, logger *logrus.Logger, tracer trace.Tracer) *ImageStorage {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	return &ImageStorage{
		client:  httpClient,
		baseURL: baseURL,
		logger:  logger,
		tracer:  tracer,
		cb:      circuitBreaker("imageStorage", logger),
	}
}

// Upload sends the image to the CDN under the given folder. The stored
// name gets a uuid prefix so repeated uploads of the same file never
// collide.
func (storage *ImageStorage) Upload(ctx context.Context, folder, fileName string, content []byte) (string, error) {
	ctx, span := storage.tracer.Start(ctx, "ImageStorage.Upload")
	defer span.End()

	storedName := fmt.Sprintf("%s-%s", uuid.NewString(), fileName)

	result, err := storage.cb.Execute(func() (interface{}, error) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", storedName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(content); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		endpoint := fmt.Sprintf("%s/upload/%s", storage.baseURL, path.Clean(folder))
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", writer.FormDataContentType())

		response, err := storage.client.Do(request)
		if err != nil {
			return nil, err
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("image CDN returned status %d", response.StatusCode)
		}

		responseBody, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, err
		}

		var uploaded uploadResponse
		if err := json.Unmarshal(responseBody, &uploaded); err != nil {
			return nil, err
		}
		return uploaded.URL, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		storage.logger.Println("Error uploading image:", err)
		return "", err
	}

	return result.(string), nil
}

func circuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Printf("Circuit Breaker '%s' changed from '%s' to '%s'\n", name, from, to)
			},
		},
	)
}
