// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetAgentID gets the authenticated agent ID from context
func GetAgentID(c *gin.Context) (string, bool) {
	agentID, exists := c.Get("agent_id")
	if !exists {
		return "", false
	}

	id, ok := agentID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// MustGetAgentID gets the agent ID from context or panics
func MustGetAgentID(c *gin.Context) string {
	agentID, exists := GetAgentID(c)
	if !exists {
		panic("agent_id not found in context")
	}
	return agentID
}

// GetDisplayName gets the agent display name from context
func GetDisplayName(c *gin.Context) string {
	name, exists := c.Get("display_name")
	if !exists {
		return ""
	}

	displayName, ok := name.(string)
	if !ok {
		return ""
	}
	return displayName
}

// GetRoles gets agent roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get("roles")
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}
