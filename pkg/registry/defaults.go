package registry

import (
	"github.com/vandyand/agentic-workflow-engine/pkg/actions/echo"
	"github.com/vandyand/agentic-workflow-engine/pkg/actions/filewrite"
	"github.com/vandyand/agentic-workflow-engine/pkg/actions/httprequest"
	"github.com/vandyand/agentic-workflow-engine/pkg/actions/llm"
	"github.com/vandyand/agentic-workflow-engine/pkg/actions/logmsg"
	"github.com/vandyand/agentic-workflow-engine/pkg/actions/transform"
	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

// RegisterDefaults registers the built-in action set.
func RegisterDefaults(r *Registry) error {
	specs := []protocol.ActionSpec{
		echo.Spec(),
		filewrite.Spec(),
		httprequest.Spec(),
		llm.Spec(),
		logmsg.Spec(),
		transform.Spec(),
	}

	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			return err
		}
	}

	return nil
}
