// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/btc-tracker/backend/config"
	"github.com/btc-tracker/backend/internal/infra/dependency"
	"github.com/btc-tracker/backend/internal/integration/lnmarkets"
	"github.com/btc-tracker/backend/internal/integration/persistence/model"
	"github.com/btc-tracker/backend/test/integration/mock"
)

// jobPollTimeout bounds how long a scenario waits for a background import.
const jobPollTimeout = 10 * time.Second

type testContext struct {
	uri      string
	headers  map[string]string
	client   *http.Client
	response *response
	values   map[string]string
}

type response struct {
	status int
	body   any
	raw    []byte
}

var (
	serverInit     sync.Once
	portInit       sync.Once
	testServerPort int
	testDB         *mock.Db
	testRedis      *redis.Client
	lnMarketsAPI   *mock.ApiMock
	injector       *dependency.Injector
)

func initializePort() {
	portInit.Do(func() {
		testServerPort = findAvailablePort()
		_ = os.Setenv("SERVER_PORT", strconv.Itoa(testServerPort))
		_ = os.Setenv("ENV", "test")
	})
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)

		lnMarketsAPI = mock.NewApiServer()
		lnMarketsAPI.Start()

		testDB = mock.NewDb(map[string]any{
			"storage_entries":   &model.StorageEntryModel{},
			"lnmarkets_configs": &model.LNMarketsConfigModel{},
		})
		_, testRedis = mock.NewRedis()
	})

	ctx.AfterSuite(func() {
		if lnMarketsAPI != nil {
			lnMarketsAPI.Close()
		}
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	initializePort()

	test := &testContext{
		uri:    fmt.Sprintf("http://localhost:%d", testServerPort),
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before(ctx)
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)

	// Header steps
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)
	ctx.When(`^I save the response field "([^"]*)" as "([^"]*)"$`, test.iSaveTheResponseFieldAs)

	// LN Markets mock steps
	ctx.Given(`^the LN Markets API returns status (\d+) for "([^"]*)" "([^"]*)" with:$`, test.theLNMarketsAPIReturns)
	ctx.Given(`^the LN Markets API returns status (\d+) for call (\d+) of "([^"]*)" "([^"]*)" with:$`, test.theLNMarketsAPIReturnsForCall)
	ctx.Then(`^the LN Markets API should have received (\d+) "([^"]*)" requests? to "([^"]*)"$`, test.theLNMarketsAPIShouldHaveReceived)
	ctx.Then(`^the LN Markets request (\d+) to "([^"]*)" "([^"]*)" should be signed$`, test.theLNMarketsRequestShouldBeSigned)
	ctx.Then(`^the LN Markets request (\d+) to "([^"]*)" "([^"]*)" should have the query "([^"]*)" with "([^"]*)"$`, test.theLNMarketsRequestShouldHaveTheQuery)

	// Import job steps
	ctx.Then(`^the import job "([^"]*)" should finish with status "([^"]*)"$`, test.theImportJobShouldFinishWithStatus)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items?$`, test.theResponseFieldShouldHaveItems)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)
}

func findAvailablePort() int {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		panic(err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

// before resets every shared resource so scenarios start from a fresh
// default collection.
func (t *testContext) before(ctx context.Context) error {
	t.headers = make(map[string]string)
	t.values = make(map[string]string)
	t.response = nil

	if lnMarketsAPI != nil {
		lnMarketsAPI.Reset()
	}
	if testRedis != nil {
		if err := mock.ClearRedis(testRedis); err != nil {
			return err
		}
	}
	if testDB != nil {
		if err := testDB.ClearDB(); err != nil {
			return err
		}
	}
	if injector != nil {
		injector.MetricsCache.Clear()
		return injector.Store.Load(ctx)
	}
	return nil
}

func (t *testContext) startServer() error {
	var startErr error
	serverInit.Do(func() {
		_ = os.Setenv("LNMARKETS_BASE_URL", lnMarketsAPI.GetUrl())
		_ = os.Setenv("LNMARKETS_TESTNET_BASE_URL", lnMarketsAPI.GetUrl())
		_ = os.Setenv("IMPORT_PAGE_DELAY", "1ms")
		_ = os.Setenv("IMPORT_RETRY_DELAY", "1ms")
		_ = os.Setenv("IMPORT_RETRY_ATTEMPTS", "2")

		cfg := config.Load()
		injector = dependency.NewInjector(cfg, testDB.DbConn, testRedis, nil)

		if startErr = injector.Store.Load(context.Background()); startErr != nil {
			return
		}
		go injector.ListenRemoteEvents(context.Background())

		engine := injector.Router.Setup("test")
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", testServerPort),
			Handler: engine,
		}
		go func() {
			_ = server.ListenAndServe()
		}()
	})
	if startErr != nil {
		return startErr
	}

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(t.uri + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("api server did not become ready")
}

func (t *testContext) theAPIServerIsRunning() error {
	return t.startServer()
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, t.replacePlaceholders(path), nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, t.replacePlaceholders(path), payload)
}

// iSaveTheResponseFieldAs stores a response value for later {{name}}
// placeholders in paths and bodies.
func (t *testContext) iSaveTheResponseFieldAs(field, name string) error {
	value, err := t.fieldValue(field)
	if err != nil {
		return err
	}
	t.values[name] = fmt.Sprintf("%v", value)
	return nil
}

func (t *testContext) replacePlaceholders(content string) string {
	for name, value := range t.values {
		content = strings.ReplaceAll(content, "{{"+name+"}}", value)
	}
	return content
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, t.uri+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{
		status: resp.StatusCode,
		raw:    bodyBytes,
	}

	var decoded any
	if err := json.Unmarshal(bodyBytes, &decoded); err != nil {
		t.response.body = string(bodyBytes)
	} else {
		t.response.body = decoded
	}
	return nil
}

func (t *testContext) theLNMarketsAPIReturns(status int, method, path string, body *godog.DocString) error {
	payload, err := decodeDocString(body)
	if err != nil {
		return err
	}
	lnMarketsAPI.SetResponse(-1, method, path, status, payload)
	return nil
}

func (t *testContext) theLNMarketsAPIReturnsForCall(status, call int, method, path string, body *godog.DocString) error {
	payload, err := decodeDocString(body)
	if err != nil {
		return err
	}
	lnMarketsAPI.SetResponse(call-1, method, path, status, payload)
	return nil
}

func (t *testContext) theLNMarketsAPIShouldHaveReceived(count int, method, path string) error {
	if got := lnMarketsAPI.CallCount(method, path); got != count {
		return fmt.Errorf("expected %d %s %s requests, got %d", count, method, path, got)
	}
	return nil
}

func (t *testContext) theLNMarketsRequestShouldBeSigned(call int, method, path string) error {
	headers := lnMarketsAPI.GetRequestHeaders(method, path, call-1)
	if headers == nil {
		return fmt.Errorf("request %d to %s %s was not received", call, method, path)
	}
	for _, name := range []string{lnmarkets.HeaderKey, lnmarkets.HeaderPassphrase, lnmarkets.HeaderTimestamp, lnmarkets.HeaderSignature} {
		if headers[http.CanonicalHeaderKey(name)] == "" {
			return fmt.Errorf("request %d to %s %s is missing header %s", call, method, path, name)
		}
	}
	return nil
}

func (t *testContext) theLNMarketsRequestShouldHaveTheQuery(call int, method, path, key, expected string) error {
	queries := lnMarketsAPI.GetRequestQueries(method, path, call-1)
	if queries == nil {
		return fmt.Errorf("request %d to %s %s was not received", call, method, path)
	}
	if queries[key] != expected {
		return fmt.Errorf("query %s of request %d expected %q, got %q", key, call, expected, queries[key])
	}
	return nil
}

// theImportJobShouldFinishWithStatus polls the job until it leaves the
// loading state.
func (t *testContext) theImportJobShouldFinishWithStatus(name, expected string) error {
	jobID, ok := t.values[name]
	if !ok {
		return fmt.Errorf("no saved value %q", name)
	}

	deadline := time.Now().Add(jobPollTimeout)
	for time.Now().Before(deadline) {
		if err := t.executeRequest(http.MethodGet, "/api/v1/imports/"+jobID, nil); err != nil {
			return err
		}
		if t.response.status != http.StatusOK {
			return fmt.Errorf("polling job %s returned %d: %s", jobID, t.response.status, t.response.raw)
		}
		status, _ := t.fieldValue("status")
		if status != "loading" {
			if status != expected {
				return fmt.Errorf("job %s finished with status %v, expected %s: %s", jobID, status, expected, t.response.raw)
			}
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("job %s did not finish within %s", jobID, jobPollTimeout)
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %s)", expectedStatus, t.response.status, t.response.raw)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return errors.New("no response received")
	}
	switch t.response.body.(type) {
	case map[string]any, []any:
		return nil
	}
	return fmt.Errorf("response is not JSON: %s", t.response.raw)
}

func (t *testContext) theResponseShouldContain(field string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	body, ok := t.response.body.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not a JSON object: %s", t.response.raw)
	}

	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %s", field, t.response.raw)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	value, err := t.fieldValue(field)
	if err != nil {
		return err
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != t.replacePlaceholders(expectedValue) {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	_, err := t.fieldValue(field)
	return err
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, count int) error {
	value, err := t.fieldValue(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %v", field, value)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(items))
	}
	return nil
}

func (t *testContext) fieldValue(field string) (any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	value := getFieldValue(t.response.body, field)
	if value == nil {
		return nil, fmt.Errorf("field '%s' not found in response: %s", field, t.response.raw)
	}
	return value, nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	return t.countRows(quantity, table, nil)
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(t.replacePlaceholders(content.Content)), &criteria); err != nil {
		return err
	}
	return t.countRows(quantity, table, criteria)
}

func (t *testContext) countRows(quantity int, table string, criteria map[string]any) error {
	entity, ok := testDB.GetModel(table)
	if !ok {
		return fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entity).Elem()
	entitySlicePtr := reflect.New(reflect.SliceOf(entityType))

	query := testDB.DbConn.Unscoped()
	for key, value := range criteria {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}
	if err := query.Find(entitySlicePtr.Interface()).Error; err != nil {
		return err
	}

	if count := entitySlicePtr.Elem().Len(); count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

func decodeDocString(body *godog.DocString) (any, error) {
	if body == nil || strings.TrimSpace(body.Content) == "" {
		return map[string]any{}, nil
	}
	var payload any
	if err := json.Unmarshal([]byte(body.Content), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON in step: %w", err)
	}
	return payload, nil
}

func getFieldValue(object any, dotSeparatedField string) any {
	var field any = object
	for _, currentField := range strings.Split(dotSeparatedField, ".") {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			arr, ok := field.([]any)
			if !ok || i >= len(arr) {
				return nil
			}
			field = arr[i]
			continue
		}

		m, ok := field.(map[string]any)
		if !ok {
			return nil
		}
		field = m[currentField]
	}
	return field
}
