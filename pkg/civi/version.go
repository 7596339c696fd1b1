package civi

// Version describes the entity and action names recognized by one CiviCRM
// API version, and thereby which calling convention applies. The two
// package-level instances V3 and V4 are built once and never mutated.
type Version struct {
	name     string
	entities []string
	actions  []string

	entitySet map[string]struct{}
	actionSet map[string]struct{}
}

// NewVersion creates a version descriptor. Entity and action names must be
// unique within a version; duplicates are collapsed.
func NewVersion(name string, entities, actions []string) *Version {
	version := &Version{
		name:      name,
		entitySet: make(map[string]struct{}, len(entities)),
		actionSet: make(map[string]struct{}, len(actions)),
	}

	for _, entity := range entities {
		if _, ok := version.entitySet[entity]; ok {
			continue
		}

		version.entitySet[entity] = struct{}{}
		version.entities = append(version.entities, entity)
	}

	for _, action := range actions {
		if _, ok := version.actionSet[action]; ok {
			continue
		}

		version.actionSet[action] = struct{}{}
		version.actions = append(version.actions, action)
	}

	return version
}

// Name returns the version tag, "3" or "4" for the built-in descriptors.
func (v *Version) Name() string {
	return v.name
}

// Entities returns the registered entity names in registration order.
func (v *Version) Entities() []string {
	out := make([]string, len(v.entities))
	copy(out, v.entities)

	return out
}

// Actions returns the registered action names in registration order.
func (v *Version) Actions() []string {
	out := make([]string, len(v.actions))
	copy(out, v.actions)

	return out
}

// HasEntity reports whether the version declares the entity name.
func (v *Version) HasEntity(name string) bool {
	_, ok := v.entitySet[name]

	return ok
}

// HasAction reports whether the version declares the action name.
func (v *Version) HasAction(name string) bool {
	_, ok := v.actionSet[name]

	return ok
}

// defaultEntities is the entity set common to both API versions. Extra
// entities can be registered per API instance via WithEntity.
var defaultEntities = []string{
	"Contact",
	"Activity",
	"Address",
	"Email",
	"Phone",
	"Website",
	"Group",
	"GroupContact",
	"Tag",
	"EntityTag",
	"Relationship",
	"Contribution",
	"ContributionRecur",
	"Event",
	"Participant",
	"Membership",
	"MembershipType",
	"Note",
	"OptionGroup",
	"OptionValue",
	"CustomField",
	"CustomGroup",
	"Setting",
	"System",
}

// V3 describes CiviCRM APIv3: flat wire parameters, is_error envelopes.
var V3 = NewVersion("3", defaultEntities, []string{
	"get",
	"getsingle",
	"getcount",
	"getvalue",
	"getfields",
	"getoptions",
	"getactions",
	"create",
	"delete",
	"replace",
})

// V4 describes CiviCRM APIv4: structured select/where/values parameters,
// error_code envelopes.
var V4 = NewVersion("4", defaultEntities, []string{
	"checkAccess",
	"getActions",
	"getFields",
	"get",
	"create",
	"update",
	"save",
	"delete",
	"replace",
})
