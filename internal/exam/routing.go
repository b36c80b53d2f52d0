package exam

import "fmt"

// RouteKind is where the UI goes after a successful module submission.
type RouteKind string

const (
	RouteModuleIntro RouteKind = "module_intro"
	RouteFullResults RouteKind = "full_results"
	RouteMathResults RouteKind = "math_results"
)

type Route struct {
	Kind   RouteKind `json:"kind"`
	Module int       `json:"module,omitempty"` // set when Kind==RouteModuleIntro
}

func (r Route) String() string {
	if r.Kind == RouteModuleIntro {
		return fmt.Sprintf("%s(%d)", r.Kind, r.Module)
	}
	return string(r.Kind)
}

// NextRoute is the fixed post-submit routing table. It is deliberately an
// enumerated table rather than inferred control flow so every case can be
// audited and tested. The attempt passed in already contains the module just
// submitted.
func NextRoute(submitted int, a Attempt) Route {
	switch submitted {
	case 1:
		return Route{Kind: RouteModuleIntro, Module: 2}
	case 2:
		if !a.ModuleComplete(3) {
			return Route{Kind: RouteModuleIntro, Module: 3}
		}
		if !a.ModuleComplete(4) {
			return Route{Kind: RouteModuleIntro, Module: 4}
		}
		return Route{Kind: RouteFullResults}
	case 3:
		return Route{Kind: RouteModuleIntro, Module: 4}
	default: // module 4
		if a.ModuleComplete(1) && a.ModuleComplete(2) {
			return Route{Kind: RouteFullResults}
		}
		return Route{Kind: RouteMathResults}
	}
}

// Router is a hook for multistage-adaptive module selection (harder or
// easier variants chosen from prior-module performance). Nothing is
// registered today: module content is statically assigned per module number,
// and the default table above decides navigation. Return ok=false to fall
// back to NextRoute.
type Router interface {
	NextModule(a Attempt, submitted int) (Route, bool)
}

var routers = map[string]Router{}

// RegisterRouter binds a router to a profile key (e.g. "sat.v1"). Intended
// to be called from init in a profile package.
func RegisterRouter(profile string, r Router) {
	if profile == "" || r == nil {
		return
	}
	routers[profile] = r
}

// RouterForProfile returns the registered router for a profile, or nil.
func RouterForProfile(profile string) Router {
	return routers[profile]
}

// RouteAfter resolves the post-submit route, consulting a registered profile
// router first and falling back to the fixed table.
func RouteAfter(profile string, submitted int, a Attempt) Route {
	if r := RouterForProfile(profile); r != nil {
		if route, ok := r.NextModule(a, submitted); ok {
			return route
		}
	}
	return NextRoute(submitted, a)
}
