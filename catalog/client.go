package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sbomtools/bomsync/cloud"
	"github.com/sbomtools/bomsync/common"
)

const (
	requestTimeout  = 30 * time.Second
	jsonContentType = "application/json"
)

// API is the slice of the catalog service that reconciliation needs.
type API interface {
	Lookup(name, version string) (*Remote, error)
	VersionsOf(name string) ([]*Remote, error)
	Create(project *Project) (uuid string, conflict bool, err error)
	Update(project *Project) error
	ClearLatest(uuid string) error
	Remove(uuid string) error
	Ping() error
}

// Client talks to one catalog service endpoint.
type Client struct {
	delegate cloud.Client
	apiKey   string
}

func NewClient(endpoint, apiKey string) (*Client, error) {
	nice := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	var delegate cloud.Client
	var err error
	if strings.HasPrefix(nice, "http://") {
		common.Debug("Catalog endpoint %q uses plain http.", nice)
		delegate, err = cloud.NewUnsafeClient(nice)
	} else {
		delegate, err = cloud.NewClient(nice)
	}
	if err != nil {
		return nil, err
	}
	return &Client{
		delegate: delegate.WithTimeout(requestTimeout),
		apiKey:   apiKey,
	}, nil
}

func (it *Client) does(method, path string, payload []byte) *cloud.Response {
	request := it.delegate.NewRequest(path)
	request.Headers["X-API-Key"] = it.apiKey
	request.Headers["Accept"] = jsonContentType
	if payload != nil {
		request.Headers["Content-Type"] = jsonContentType
		request.Body = strings.NewReader(string(payload))
		request.ContentLength = int64(len(payload))
	}
	switch method {
	case "GET":
		return it.delegate.Get(request)
	case "PUT":
		return it.delegate.Put(request)
	case "PATCH":
		return it.delegate.Patch(request)
	case "DELETE":
		return it.delegate.Delete(request)
	default:
		return it.delegate.Post(request)
	}
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func expect(response *cloud.Response, status int, operation string) error {
	if response.Err != nil {
		return &ConnectionError{Operation: operation, Status: response.Status, Detail: response.Err.Error()}
	}
	if response.Status == 401 || response.Status == 403 {
		return &AuthenticationError{Status: response.Status}
	}
	if response.Status != status {
		return &ConnectionError{Operation: operation, Status: response.Status, Detail: snippet(response.Body)}
	}
	return nil
}

// Ping verifies connectivity and the credential with one cheap read.
func (it *Client) Ping() error {
	return expect(it.does("GET", "/project", nil), 200, "Connection test")
}

// Lookup finds one entry by name, and by version when version is given.
// Not found is (nil, nil), not an error. The lookup endpoint is tried
// first; a full listing scan covers services without it.
func (it *Client) Lookup(name, version string) (*Remote, error) {
	query := url.Values{}
	query.Set("name", name)
	if len(version) > 0 {
		query.Set("version", version)
	}
	response := it.does("GET", "/project/lookup?"+query.Encode(), nil)
	if response.Err == nil && response.Status == 200 {
		remote := new(Remote)
		err := json.Unmarshal(response.Body, remote)
		if err == nil && len(remote.UUID) > 0 {
			common.Debug("Found project via lookup: %s (uuid: %s)", remote.Name, remote.UUID)
			return remote, nil
		}
	}
	if response.Status == 401 || response.Status == 403 {
		return nil, &AuthenticationError{Status: response.Status}
	}
	if response.Status == 404 {
		return nil, nil
	}
	common.Debug("Project lookup failed (status: %d), falling back to listing.", response.Status)
	return it.scan(name, version)
}

func (it *Client) scan(name, version string) (*Remote, error) {
	projects, err := it.listing()
	if err != nil {
		return nil, err
	}
	for _, project := range projects {
		if project.Name != name {
			continue
		}
		if len(version) == 0 || project.Version == version {
			return project, nil
		}
	}
	return nil, nil
}

func (it *Client) listing() ([]*Remote, error) {
	response := it.does("GET", "/project", nil)
	if err := expect(response, 200, "Project listing"); err != nil {
		return nil, err
	}
	projects := []*Remote{}
	err := json.Unmarshal(response.Body, &projects)
	if err != nil {
		return nil, &ConnectionError{Operation: "Project listing", Status: response.Status, Detail: err.Error()}
	}
	return projects, nil
}

// VersionsOf returns every entry sharing the given name.
func (it *Client) VersionsOf(name string) ([]*Remote, error) {
	projects, err := it.listing()
	if err != nil {
		return nil, err
	}
	matching := make([]*Remote, 0, len(projects))
	for _, project := range projects {
		if project.Name == name {
			matching = append(matching, project)
		}
	}
	return matching, nil
}

// Create registers a new entry. A reported name/version conflict is a
// distinct outcome, not an error: the caller owns conflict recovery.
func (it *Client) Create(project *Project) (string, bool, error) {
	payload, err := json.Marshal(project.apiForm())
	if err != nil {
		return "", false, err
	}
	response := it.does("PUT", "/project", payload)
	if response.Err != nil {
		return "", false, &ConnectionError{Operation: "Project creation", Status: response.Status, Detail: response.Err.Error()}
	}
	switch response.Status {
	case 201:
		created := new(Remote)
		err = json.Unmarshal(response.Body, created)
		if err != nil || len(created.UUID) == 0 {
			return "", false, &ConnectionError{Operation: "Project creation", Status: response.Status, Detail: snippet(response.Body)}
		}
		return created.UUID, false, nil
	case 401, 403:
		return "", false, &AuthenticationError{Status: response.Status}
	case 409:
		return "", true, nil
	default:
		return "", false, &ConnectionError{Operation: "Project creation", Status: response.Status, Detail: snippet(response.Body)}
	}
}

// Update patches an existing entry in place with the project's current
// field values.
func (it *Client) Update(project *Project) error {
	payload, err := json.Marshal(project.apiForm())
	if err != nil {
		return err
	}
	response := it.does("PATCH", "/project/"+project.UUID, payload)
	return expect(response, 200, "Project update")
}

// ClearLatest drops the latest flag from one entry, preserving all its
// other fields by patching the fetched document back.
func (it *Client) ClearLatest(uuid string) error {
	response := it.does("GET", "/project/"+uuid, nil)
	if err := expect(response, 200, "Project fetch"); err != nil {
		return err
	}
	document := map[string]interface{}{}
	err := json.Unmarshal(response.Body, &document)
	if err != nil {
		return fmt.Errorf("decoding project %s failed, reason: %w", uuid, err)
	}
	document["isLatest"] = false
	payload, err := json.Marshal(document)
	if err != nil {
		return err
	}
	return expect(it.does("PATCH", "/project/"+uuid, payload), 200, "Latest flag update")
}

// Remove deletes one entry. Already gone counts as success.
func (it *Client) Remove(uuid string) error {
	response := it.does("DELETE", "/project/"+uuid, nil)
	if response.Err == nil && (response.Status == 204 || response.Status == 404) {
		return nil
	}
	return expect(response, 204, "Project deletion")
}
