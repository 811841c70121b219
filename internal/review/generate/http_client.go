package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	commitMessagesEndpointPathConstant = "/v1/commit-messages"
	summaryEndpointPathConstant        = "/v1/executive-summary"
	contentTypeHeaderNameConstant      = "Content-Type"
	authorizationHeaderNameConstant    = "Authorization"
	jsonContentTypeConstant            = "application/json"
	bearerTokenTemplateConstant        = "Bearer %s"
	requestEncodingErrorTemplate       = "failed to encode generation request: %w"
	requestCreationErrorTemplate       = "failed to create generation request: %w"
	requestTransportErrorTemplate      = "generation request failed: %w"
	responseStatusErrorTemplate        = "generation endpoint returned status %d: %s"
	responseDecodingErrorTemplate      = "failed to decode generation response: %w"
	clientEndpointMissingMessage       = "generation client requires an endpoint"
)

// ErrGenerationEndpointMissing indicates the client was constructed without an endpoint.
var ErrGenerationEndpointMissing = errors.New(clientEndpointMissingMessage)

// HTTPDoer executes HTTP requests; it matches *http.Client for production use.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// HTTPGenerationClient talks to the AI generation gateway over JSON HTTP.
type HTTPGenerationClient struct {
	endpoint   string
	apiToken   string
	httpClient HTTPDoer
}

// NewHTTPGenerationClient constructs a client for the provided gateway endpoint.
func NewHTTPGenerationClient(endpoint string, apiToken string, httpClient HTTPDoer) (*HTTPGenerationClient, error) {
	trimmedEndpoint := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if len(trimmedEndpoint) == 0 {
		return nil, ErrGenerationEndpointMissing
	}

	resolvedClient := httpClient
	if resolvedClient == nil {
		resolvedClient = http.DefaultClient
	}

	return &HTTPGenerationClient{endpoint: trimmedEndpoint, apiToken: apiToken, httpClient: resolvedClient}, nil
}

// GenerateCommitMessages posts one batched request covering every changed repository.
func (client *HTTPGenerationClient) GenerateCommitMessages(executionContext context.Context, request BatchGenerationRequest) (BatchGenerationResponse, error) {
	var response BatchGenerationResponse
	if postError := client.postJSON(executionContext, commitMessagesEndpointPathConstant, request, &response); postError != nil {
		return BatchGenerationResponse{}, postError
	}
	return response, nil
}

// GenerateExecutiveSummary posts a cross-repository summary request.
func (client *HTTPGenerationClient) GenerateExecutiveSummary(executionContext context.Context, request SummaryRequest) (SummaryResponse, error) {
	var response SummaryResponse
	if postError := client.postJSON(executionContext, summaryEndpointPathConstant, request, &response); postError != nil {
		return SummaryResponse{}, postError
	}
	return response, nil
}

func (client *HTTPGenerationClient) postJSON(executionContext context.Context, endpointPath string, requestPayload any, responseTarget any) error {
	encodedPayload, encodingError := json.Marshal(requestPayload)
	if encodingError != nil {
		return fmt.Errorf(requestEncodingErrorTemplate, encodingError)
	}

	httpRequest, creationError := http.NewRequestWithContext(executionContext, http.MethodPost, client.endpoint+endpointPath, bytes.NewReader(encodedPayload))
	if creationError != nil {
		return fmt.Errorf(requestCreationErrorTemplate, creationError)
	}

	httpRequest.Header.Set(contentTypeHeaderNameConstant, jsonContentTypeConstant)
	if len(client.apiToken) > 0 {
		httpRequest.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(bearerTokenTemplateConstant, client.apiToken))
	}

	httpResponse, transportError := client.httpClient.Do(httpRequest)
	if transportError != nil {
		return fmt.Errorf(requestTransportErrorTemplate, transportError)
	}
	defer func() { _ = httpResponse.Body.Close() }()

	if httpResponse.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(httpResponse.Body)
		return fmt.Errorf(responseStatusErrorTemplate, httpResponse.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	if decodingError := json.NewDecoder(httpResponse.Body).Decode(responseTarget); decodingError != nil {
		return fmt.Errorf(responseDecodingErrorTemplate, decodingError)
	}

	return nil
}
