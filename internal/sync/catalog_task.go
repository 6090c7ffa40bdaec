package sync

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/complytools/cacsync/internal/cac"
	"github.com/complytools/cacsync/internal/logging"
	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/yamldoc"
)

// CatalogTask folds OSCAL catalog statement prose into the description
// fields of a policy's control file. Only top-level control records are
// touched; nested controls keep their own descriptions.
type CatalogTask struct {
	ws       *oscal.Workspace
	store    *cac.Store
	policyID string
}

// NewCatalogTask builds a catalog sync task for one policy.
func NewCatalogTask(ws *oscal.Workspace, store *cac.Store, policyID string) *CatalogTask {
	return &CatalogTask{ws: ws, store: store, policyID: policyID}
}

// Name implements Task.
func (t *CatalogTask) Name() string { return "sync-catalog" }

// Execute implements Task.
func (t *CatalogTask) Execute() (*Result, error) {
	defer logging.Timer(t.Name())()
	result := &Result{Task: t.Name(), Policy: t.policyID}

	catalogPath := t.ws.CatalogPath(t.policyID)
	if _, err := os.Stat(catalogPath); err != nil {
		return nil, fmt.Errorf("catalog %s does not exist: %w", catalogPath, err)
	}
	catalog, err := t.ws.ReadCatalog(t.policyID)
	if err != nil {
		return nil, err
	}

	doc, err := yamldoc.Load(t.store.ControlFile(t.policyID))
	if err != nil {
		return nil, err
	}
	cacControls := make(map[string]*yaml.Node)
	if controls := yamldoc.Get(doc.Root(), "controls"); controls != nil {
		for _, ctrl := range controls.Content {
			cacControls[yamldoc.StringValue(yamldoc.Get(ctrl, "id"))] = ctrl
		}
	}

	for _, octrl := range catalog.AllControls() {
		label := octrl.Label()
		if label == "" {
			continue
		}
		ctrl, ok := cacControls[label]
		if !ok {
			continue
		}

		prose := octrl.PartProse("statement")
		description := yamldoc.StringValue(yamldoc.Get(ctrl, "description"))
		if description == "" && prose == "" {
			continue
		}
		yamldoc.Ensure(ctrl, "description", yamldoc.Scalar(""))
		if description != prose {
			yamldoc.Set(ctrl, "description", yamldoc.Scalar(prose))
			logging.Info("updated control description",
				logging.Control(label),
				logging.Policy(t.policyID),
			)
			result.add(FindingDescriptionUpdated, label, "description", "")
		}
	}

	if err := doc.Save(); err != nil {
		return nil, err
	}
	return result, nil
}
