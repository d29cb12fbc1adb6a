package registry

import (
	"github.com/flowgent/flowgent/pkg/nodes/airesponse"
	"github.com/flowgent/flowgent/pkg/nodes/condition"
	"github.com/flowgent/flowgent/pkg/nodes/httprequest"
	"github.com/flowgent/flowgent/pkg/nodes/humanhandoff"
	"github.com/flowgent/flowgent/pkg/nodes/log"
	"github.com/flowgent/flowgent/pkg/nodes/loop"
	"github.com/flowgent/flowgent/pkg/nodes/transform"
	"github.com/flowgent/flowgent/pkg/nodes/trigger"
	"github.com/flowgent/flowgent/pkg/nodes/variable"
	"github.com/flowgent/flowgent/pkg/nodes/wait"
	"github.com/flowgent/flowgent/pkg/nodes/webhook"
)

// RegisterDefaultNodes registers all built-in node factories with the registry.
func (r *Registry) RegisterDefaultNodes() {
	r.RegisterNode(trigger.NewTriggerNodeFactory())
	r.RegisterNode(condition.NewConditionNodeFactory())
	r.RegisterNode(transform.NewTransformNodeFactory())
	r.RegisterNode(airesponse.NewAIResponseNodeFactory(nil))
	r.RegisterNode(humanhandoff.NewHumanHandoffNodeFactory())
	r.RegisterNode(httprequest.NewHTTPRequestNodeFactory())
	r.RegisterNode(webhook.NewWebhookNodeFactory())
	r.RegisterNode(wait.NewWaitNodeFactory())
	r.RegisterNode(variable.NewVariableNodeFactory())
	r.RegisterNode(loop.NewLoopNodeFactory())
	r.RegisterNode(log.NewLogNodeFactory())
}
