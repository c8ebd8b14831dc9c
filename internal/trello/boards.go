package trello

import (
	"net/http"

	ep "github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

var boardEndpoints = []ep.Descriptor{
	{
		Name:     "trello_get_board",
		Title:    "Get Board",
		Category: CategoryBoards,
		Method:   http.MethodGet,
		Path:     "/boards/{id}",
		Description: `Get a single board by ID, optionally with its lists, cards, labels and members.

USE WHEN: User asks "show me board X", "what's on the roadmap board", or you need board settings.

NOT FOR: Listing only the columns of a board (use trello_get_board_lists).

PARAMETERS:
- id: Board ID (required)
- lists, cards, labels, members: Nested resources to include (optional)

RETURNS: Board object with name, desc, url, prefs and any requested nested resources.`,
		Params: []ep.Param{
			idParam("board"),
			fieldsParam("board"),
			ep.QueryParam("actions", ep.String, "Nested actions filter, e.g. all or commentCard"),
			ep.QueryParam("cards", ep.String, "Nested cards filter").OneOf("all", "closed", "none", "open", "visible"),
			ep.QueryParam("card_fields", ep.Array, "Fields of nested cards"),
			ep.QueryParam("lists", ep.String, "Nested lists filter").OneOf("all", "closed", "none", "open"),
			ep.QueryParam("labels", ep.String, "Nested labels filter, e.g. all"),
			ep.QueryParam("members", ep.String, "Nested members filter, e.g. all"),
			ep.QueryParam("checklists", ep.String, "Nested checklists filter").OneOf("all", "none"),
			ep.QueryParam("customFields", ep.Boolean, "Include custom field definitions"),
		},
	},
	{
		Name:     "trello_get_board_lists",
		Title:    "Get Board Lists",
		Category: CategoryBoards,
		Method:   http.MethodGet,
		Path:     "/boards/{id}/lists",
		Description: `Get the lists (columns) on a board.

USE WHEN: User asks "what columns are on board X", or you need a list ID before creating or moving a card.

PARAMETERS:
- id: Board ID (required)
- filter: open (default), closed, all, none
- cards: Include cards of each list (all, closed, none, open)

RETURNS: Array of lists with id, name, closed and pos.`,
		Params: []ep.Param{
			idParam("board"),
			ep.QueryParam("cards", ep.String, "Cards to include per list").OneOf("all", "closed", "none", "open"),
			ep.QueryParam("card_fields", ep.Array, "Fields of nested cards"),
			listFilterParam,
			fieldsParam("list"),
		},
	},
	{
		Name:        "trello_get_board_cards",
		Title:       "Get Board Cards",
		Category:    CategoryBoards,
		Method:      http.MethodGet,
		Path:        "/boards/{id}/cards/{filter}",
		Description: "Get the cards on a board. filter is one of all, closed, none, open, visible.",
		Params: []ep.Param{
			idParam("board"),
			ep.PathParam("filter", "Which cards to return").OneOf("all", "closed", "none", "open", "visible"),
			fieldsParam("card"),
		},
	},
	{
		Name:        "trello_get_board_members",
		Title:       "Get Board Members",
		Category:    CategoryBoards,
		Method:      http.MethodGet,
		Path:        "/boards/{id}/members",
		Description: "Get the members of a board. Use it to find a member ID before assigning a card.",
		Params:      []ep.Param{idParam("board")},
	},
	{
		Name:        "trello_get_board_labels",
		Title:       "Get Board Labels",
		Category:    CategoryBoards,
		Method:      http.MethodGet,
		Path:        "/boards/{id}/labels",
		Description: "Get the labels defined on a board.",
		Params: []ep.Param{
			idParam("board"),
			fieldsParam("label"),
			limitParam,
		},
	},
	{
		Name:        "trello_get_board_actions",
		Title:       "Get Board Actions",
		Category:    CategoryBoards,
		Method:      http.MethodGet,
		Path:        "/boards/{id}/actions",
		Description: "Get the activity feed of a board (card moves, comments, updates).",
		Params: []ep.Param{
			idParam("board"),
			actionFilterParam,
			limitParam,
			sinceParam,
			beforeParam,
			ep.QueryParam("page", ep.Integer, "Page number of results"),
		},
	},
	{
		Name:        "trello_get_board_checklists",
		Title:       "Get Board Checklists",
		Category:    CategoryBoards,
		Method:      http.MethodGet,
		Path:        "/boards/{id}/checklists",
		Description: "Get every checklist on a board.",
		Params:      []ep.Param{idParam("board")},
	},
	{
		Name:        "trello_get_board_custom_fields",
		Title:       "Get Board Custom Fields",
		Category:    CategoryBoards,
		Method:      http.MethodGet,
		Path:        "/boards/{id}/customFields",
		Description: "Get the custom field definitions of a board.",
		Params:      []ep.Param{idParam("board")},
	},
	{
		Name:     "trello_create_board",
		Title:    "Create Board",
		Category: CategoryBoards,
		Method:   http.MethodPost,
		Path:     "/boards",
		Description: `Create a new board.

PARAMETERS:
- name: Board name (required)
- defaultLists: Create the To Do / Doing / Done lists (default true)
- idOrganization: Workspace to create the board in

RETURNS: The created board.`,
		Params: []ep.Param{
			ep.QueryParam("name", ep.String, "Board name").Require(),
			ep.QueryParam("desc", ep.String, "Board description"),
			ep.QueryParam("defaultLabels", ep.Boolean, "Add the default labels"),
			ep.QueryParam("defaultLists", ep.Boolean, "Add the default lists"),
			ep.QueryParam("idOrganization", ep.String, "Workspace ID or name"),
			ep.QueryParam("idBoardSource", ep.String, "Board ID to copy"),
			ep.QueryParam("prefs_permissionLevel", ep.String, "Visibility").OneOf("org", "private", "public"),
			ep.QueryParam("prefs_background", ep.String, "Background color or image ID"),
		},
	},
	{
		Name:        "trello_update_board",
		Title:       "Update Board",
		Category:    CategoryBoards,
		Method:      http.MethodPut,
		Path:        "/boards/{id}",
		Description: "Update a board's name, description, visibility or archived state.",
		Params: []ep.Param{
			idParam("board"),
			ep.QueryParam("name", ep.String, "New name"),
			ep.QueryParam("desc", ep.String, "New description"),
			ep.QueryParam("closed", ep.Boolean, "Archive (true) or reopen (false) the board"),
			ep.QueryParam("subscribed", ep.Boolean, "Watch the board"),
			ep.QueryParam("idOrganization", ep.String, "Move the board to this workspace"),
			ep.QueryParam("prefs/permissionLevel", ep.String, "Visibility").OneOf("org", "private", "public"),
		},
	},
	{
		Name:        "trello_delete_board",
		Title:       "Delete Board",
		Category:    CategoryBoards,
		Method:      http.MethodDelete,
		Path:        "/boards/{id}",
		Description: "Permanently delete a board. This cannot be undone; prefer archiving with trello_update_board closed=true.",
		Params:      []ep.Param{idParam("board")},
	},
	{
		Name:        "trello_create_board_list",
		Title:       "Create List on Board",
		Category:    CategoryBoards,
		Method:      http.MethodPost,
		Path:        "/boards/{id}/lists",
		Description: "Create a list (column) on a board.",
		Params: []ep.Param{
			idParam("board"),
			ep.QueryParam("name", ep.String, "List name").Require(),
			posParam,
		},
	},
	{
		Name:        "trello_create_board_label",
		Title:       "Create Label on Board",
		Category:    CategoryBoards,
		Method:      http.MethodPost,
		Path:        "/boards/{id}/labels",
		Description: "Create a label on a board.",
		Params: []ep.Param{
			idParam("board"),
			ep.QueryParam("name", ep.String, "Label name").Require(),
			colorParam.Require(),
		},
	},
}
