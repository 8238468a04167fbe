package permissions

// PermissionDefinition describes a single, specific permission
type PermissionDefinition struct {
	Key         string `json:"key"`         // unique key, e.g., "candidate.death.record"
	Name        string `json:"name"`        // friendly name
	Description string `json:"description"` // what the permission allows
}

// PermissionGroupDefinition groups related permissions
type PermissionGroupDefinition struct {
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Permissions []PermissionDefinition `json:"permissions"`
}

const (
	CandidateDeathRecord = "candidate.death.record"
	CandidateDeathSync   = "candidate.death.sync"
	PermissionsView      = "system.permissions.view"
)

// DefinedPermissionGroups holds all statically defined permission groups and their permissions
var DefinedPermissionGroups = []PermissionGroupDefinition{
	{
		Key:         "candidate",
		Name:        "Candidate Management",
		Description: "Permissions related to the lifecycle of candidates.",
		Permissions: []PermissionDefinition{
			{
				Key:         CandidateDeathRecord,
				Name:        "Record Death",
				Description: "Allows recording the date of death of a candidate.",
			},
			{
				Key:         CandidateDeathSync,
				Name:        "Trigger Death Sync",
				Description: "Allows starting a check of every living candidate against Wikidata.",
			},
		},
	},
	{
		Key:         "system",
		Name:        "System Administration",
		Description: "High-level system administration permissions.",
		Permissions: []PermissionDefinition{
			{
				Key:         PermissionsView,
				Name:        "View Permissions",
				Description: "Allows listing the permissions defined by the server.",
			},
		},
	},
}

var (
	allPermissionKeysMap map[string]PermissionDefinition
	allPermissionKeys    []string
)

func init() {
	allPermissionKeysMap = make(map[string]PermissionDefinition)
	for _, group := range DefinedPermissionGroups {
		for _, perm := range group.Permissions {
			allPermissionKeysMap[perm.Key] = perm
			allPermissionKeys = append(allPermissionKeys, perm.Key)
		}
	}
}

// GetAllPermissionKeys returns a slice of all unique permission string keys
func GetAllPermissionKeys() []string {
	keys := make([]string, len(allPermissionKeys))
	copy(keys, allPermissionKeys)
	return keys
}

// IsValidPermissionKey checks if a given permission key is defined
func IsValidPermissionKey(key string) bool {
	_, ok := allPermissionKeysMap[key]
	return ok
}
