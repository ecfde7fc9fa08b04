package catalog

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sbomtools/bomsync/cloud"
	"github.com/sbomtools/bomsync/common"
)

// DryRunUUID stands in for identifiers the service would have assigned.
const DryRunUUID = "dry-run-uuid"

// BomService pushes SBOM documents to the catalog service. In dry-run
// mode it reports what would happen without touching the network.
type BomService struct {
	client *Client
	dryRun bool
}

func NewBomService(client *Client, dryRun bool) *BomService {
	return &BomService{client: client, dryRun: dryRun}
}

// Send uploads one SBOM file into an already existing project.
func (it *BomService) Send(projectUUID, filename string) UploadResult {
	if it.dryRun {
		message := fmt.Sprintf("[dry run] Would upload %s to project %s.", filepath.Base(filename), projectUUID)
		common.Log("%s", message)
		return successResult(projectUUID, message, "")
	}
	fields := [][2]string{
		{"project", projectUUID},
	}
	return it.post(filename, fields, "SBOM upload", projectUUID)
}

// SendAutoCreate uploads one SBOM file, letting the service create the
// named project on the fly when it does not exist yet.
func (it *BomService) SendAutoCreate(filename, name, version string) UploadResult {
	if it.dryRun {
		message := fmt.Sprintf("[dry run] Would upload %s as project %s@%s.", filepath.Base(filename), name, version)
		common.Log("%s", message)
		return successResult(DryRunUUID, message, "")
	}
	fields := [][2]string{
		{"autoCreate", "true"},
		{"projectName", name},
		{"projectVersion", version},
	}
	return it.post(filename, fields, "SBOM upload", "")
}

func (it *BomService) post(filename string, fields [][2]string, operation, fallbackUUID string) UploadResult {
	upload, err := cloud.NewMultipartUpload("bom", filename, fields)
	if err != nil {
		return failureResult(fmt.Sprintf("Reading %s failed, reason: %v", filename, err))
	}
	request := it.client.delegate.NewRequest("/bom")
	request.Headers["X-API-Key"] = it.client.apiKey
	request.Headers["Content-Type"] = upload.ContentType
	request.Body = upload.Body
	request.ContentLength = int64(upload.Body.Len())
	response := it.client.delegate.Post(request)
	if err := expect(response, 200, operation); err != nil {
		if Fatal(err) {
			common.Error("bom.upload", err)
		}
		return failureResult(err.Error())
	}
	accepted := struct {
		Token   string `json:"token"`
		Project struct {
			UUID string `json:"uuid"`
		} `json:"project"`
	}{}
	err = json.Unmarshal(response.Body, &accepted)
	if err != nil {
		common.Debug("Upload response was not JSON, keeping going: %v", err)
	}
	uuid := accepted.Project.UUID
	if len(uuid) == 0 {
		uuid = fallbackUUID
	}
	common.Debug("Uploaded %s (token: %q).", filepath.Base(filename), accepted.Token)
	return successResult(uuid, "SBOM uploaded successfully.", accepted.Token)
}
