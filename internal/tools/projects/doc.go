// Package projects provides the Jira project search tool.
//
// Tools:
//   - search_projects: query /rest/api/3/project/search and render a
//     markdown report of active, archived and deleted projects
package projects
