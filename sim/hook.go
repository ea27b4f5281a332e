package sim

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookPosBeforeIssue is a hook position that triggers before a command is
// issued to a domain.
var HookPosBeforeIssue = &HookPos{Name: "BeforeIssue"}

// HookPosAfterIssue is a hook position that triggers after a command is
// issued to a domain.
var HookPosAfterIssue = &HookPos{Name: "AfterIssue"}

// HookPosReqComplete is a hook position that triggers when a request
// completes at its issuing controller.
var HookPosReqComplete = &HookPos{Name: "ReqComplete"}

// HookCtx is the context that holds all the information about the site that
// a hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// Hookable defines an object that accepts Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)
}

// A HookableBase provides utility functions for types that implement the
// Hookable interface. Hooks are invoked in registration order.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
