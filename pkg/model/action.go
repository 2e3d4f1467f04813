package model

import (
	"fmt"
	"strings"
)

// Action is the kind of event recorded by a revision
type Action uint8

// Known actions
const (
	ActionUnknown Action = iota
	ActionAdded
	ActionModified
	ActionDeleted
	ActionRenamed
	ActionMovedIn
	ActionMovedOut
	ActionShared
	ActionBranched
	ActionLabeled
	ActionRecovered
)

var actionNames = [...]string{
	ActionUnknown:   "Unknown",
	ActionAdded:     "Added",
	ActionModified:  "Modified",
	ActionDeleted:   "Deleted",
	ActionRenamed:   "Renamed",
	ActionMovedIn:   "MovedIn",
	ActionMovedOut:  "MovedOut",
	ActionShared:    "Shared",
	ActionBranched:  "Branched",
	ActionLabeled:   "Labeled",
	ActionRecovered: "Recovered",
}

func (a Action) String() string {
	if int(a) >= len(actionNames) {
		return actionNames[ActionUnknown]
	}
	return actionNames[a]
}

// IsValid tells if this action is a known one
func (a Action) IsValid() bool {
	return a > ActionUnknown && int(a) < len(actionNames)
}

// RequiresContent tells if a revision with this action on a leaf must carry a content reference
func (a Action) RequiresContent() bool {
	return a == ActionAdded || a == ActionModified
}

// ParseAction resolves an action from its name, case-insensitively
func ParseAction(name string) (Action, error) {
	for i, candidate := range actionNames {
		if i == int(ActionUnknown) {
			continue
		}
		if strings.EqualFold(candidate, strings.TrimSpace(name)) {
			return Action(i), nil
		}
	}
	return ActionUnknown, fmt.Errorf("unknown action %q", name)
}

// MarshalYAML renders the action by name
func (a Action) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML parses the action by name
func (a *Action) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	action, err := ParseAction(name)
	if err != nil {
		return err
	}
	*a = action
	return nil
}
