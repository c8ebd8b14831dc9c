package trello

import (
	ep "github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

// Shared parameter declarations. Trello reuses the same names across
// resources, so tables compose these instead of repeating descriptions.

func idParam(resource string) ep.Param {
	return ep.PathParam("id", "The ID of the "+resource)
}

func fieldsParam(resource string) ep.Param {
	return ep.QueryParam("fields", ep.Array, "Comma-separated "+resource+" fields to return, or all")
}

var (
	posParam = ep.QueryParam("pos", ep.String,
		"Position: top, bottom, or a positive number")

	cardFilterParam = ep.QueryParam("filter", ep.String,
		"Which cards to return").OneOf("all", "closed", "none", "open", "visible")

	listFilterParam = ep.QueryParam("filter", ep.String,
		"Which lists to return").OneOf("all", "closed", "none", "open")

	actionFilterParam = ep.QueryParam("filter", ep.String,
		"Comma-separated action types, e.g. commentCard,updateCard")

	limitParam = ep.QueryParam("limit", ep.Integer,
		"Maximum number of results (1-1000)")

	sinceParam = ep.QueryParam("since", ep.String,
		"Only return items after this date or action ID")

	beforeParam = ep.QueryParam("before", ep.String,
		"Only return items before this date or action ID")

	colorParam = ep.QueryParam("color", ep.String,
		"Label color").OneOf("yellow", "purple", "blue", "red", "green", "orange", "black", "sky", "pink", "lime")

	textParam = ep.QueryParam("text", ep.String, "Comment text").Require()
)
