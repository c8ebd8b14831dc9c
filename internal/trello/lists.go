package trello

import (
	"net/http"

	ep "github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

var listEndpoints = []ep.Descriptor{
	{
		Name:        "trello_get_list",
		Title:       "Get List",
		Category:    CategoryLists,
		Method:      http.MethodGet,
		Path:        "/lists/{id}",
		Description: "Get a single list by ID.",
		Params: []ep.Param{
			idParam("list"),
			fieldsParam("list"),
		},
	},
	{
		Name:     "trello_create_list",
		Title:    "Create List",
		Category: CategoryLists,
		Method:   http.MethodPost,
		Path:     "/lists",
		Description: `Create a list on a board.

PARAMETERS:
- name: List name (required)
- idBoard: Board ID (required)
- pos: top, bottom or a number

RETURNS: The created list.`,
		Params: []ep.Param{
			ep.QueryParam("name", ep.String, "List name").Require(),
			ep.QueryParam("idBoard", ep.String, "Board ID").Require(),
			ep.QueryParam("idListSource", ep.String, "List ID to copy"),
			posParam,
		},
	},
	{
		Name:        "trello_update_list",
		Title:       "Update List",
		Category:    CategoryLists,
		Method:      http.MethodPut,
		Path:        "/lists/{id}",
		Description: "Rename, reposition, archive or move a list to another board.",
		Params: []ep.Param{
			idParam("list"),
			ep.QueryParam("name", ep.String, "New name"),
			ep.QueryParam("closed", ep.Boolean, "Archive (true) or reopen (false)"),
			ep.QueryParam("idBoard", ep.String, "Move to this board"),
			posParam,
			ep.QueryParam("subscribed", ep.Boolean, "Watch the list"),
		},
	},
	{
		Name:        "trello_archive_list",
		Title:       "Archive or Unarchive List",
		Category:    CategoryLists,
		Method:      http.MethodPut,
		Path:        "/lists/{id}/closed",
		Description: "Archive (value=true) or unarchive (value=false) a list.",
		Params: []ep.Param{
			idParam("list"),
			ep.QueryParam("value", ep.Boolean, "true to archive, false to unarchive").Require(),
		},
	},
	{
		Name:     "trello_get_list_cards",
		Title:    "Get List Cards",
		Category: CategoryLists,
		Method:   http.MethodGet,
		Path:     "/lists/{id}/cards",
		Description: `Get the cards in a list.

USE WHEN: User asks "what's in the Doing column", "show cards in list X".

NOT FOR: All cards on a board (use trello_get_board_cards).`,
		Params: []ep.Param{
			idParam("list"),
			cardFilterParam,
			fieldsParam("card"),
		},
	},
	{
		Name:        "trello_archive_all_list_cards",
		Title:       "Archive All Cards in List",
		Category:    CategoryLists,
		Method:      http.MethodPost,
		Path:        "/lists/{id}/archiveAllCards",
		Description: "Archive every card in a list.",
		Params:      []ep.Param{idParam("list")},
	},
	{
		Name:        "trello_move_all_list_cards",
		Title:       "Move All Cards in List",
		Category:    CategoryLists,
		Method:      http.MethodPost,
		Path:        "/lists/{id}/moveAllCards",
		Description: "Move every card in a list to another list.",
		Params: []ep.Param{
			idParam("list"),
			ep.QueryParam("idBoard", ep.String, "Destination board ID").Require(),
			ep.QueryParam("idList", ep.String, "Destination list ID").Require(),
		},
	},
}
