package trello

import (
	"net/http"

	ep "github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

var checklistEndpoints = []ep.Descriptor{
	{
		Name:        "trello_create_checklist",
		Title:       "Create Checklist",
		Category:    CategoryChecklists,
		Method:      http.MethodPost,
		Path:        "/checklists",
		Description: "Create a checklist on a card.",
		Params: []ep.Param{
			ep.QueryParam("idCard", ep.String, "Card ID").Require(),
			ep.QueryParam("name", ep.String, "Checklist name"),
			ep.QueryParam("idChecklistSource", ep.String, "Checklist ID to copy"),
			posParam,
		},
	},
	{
		Name:        "trello_get_checklist",
		Title:       "Get Checklist",
		Category:    CategoryChecklists,
		Method:      http.MethodGet,
		Path:        "/checklists/{id}",
		Description: "Get a checklist and its items.",
		Params: []ep.Param{
			idParam("checklist"),
			ep.QueryParam("checkItems", ep.String, "Items to include").OneOf("all", "none"),
			fieldsParam("checklist"),
		},
	},
	{
		Name:        "trello_delete_checklist",
		Title:       "Delete Checklist",
		Category:    CategoryChecklists,
		Method:      http.MethodDelete,
		Path:        "/checklists/{id}",
		Description: "Delete a checklist and all its items.",
		Params:      []ep.Param{idParam("checklist")},
	},
	{
		Name:     "trello_create_checkitem",
		Title:    "Add Checklist Item",
		Category: CategoryChecklists,
		Method:   http.MethodPost,
		Path:     "/checklists/{id}/checkItems",
		Description: `Add an item to a checklist.

USE WHEN: User says "add X to the checklist", "add a subtask".

NOT FOR: Creating a new card (use trello_create_card).`,
		Params: []ep.Param{
			idParam("checklist"),
			ep.QueryParam("name", ep.String, "Item text").Require(),
			posParam,
			ep.QueryParam("checked", ep.Boolean, "Create the item already checked"),
		},
	},
}

var labelEndpoints = []ep.Descriptor{
	{
		Name:        "trello_get_label",
		Title:       "Get Label",
		Category:    CategoryLabels,
		Method:      http.MethodGet,
		Path:        "/labels/{id}",
		Description: "Get a label by ID.",
		Params:      []ep.Param{idParam("label"), fieldsParam("label")},
	},
	{
		Name:        "trello_update_label",
		Title:       "Update Label",
		Category:    CategoryLabels,
		Method:      http.MethodPut,
		Path:        "/labels/{id}",
		Description: "Rename or recolor a label.",
		Params: []ep.Param{
			idParam("label"),
			ep.QueryParam("name", ep.String, "New name"),
			colorParam,
		},
	},
	{
		Name:        "trello_delete_label",
		Title:       "Delete Label",
		Category:    CategoryLabels,
		Method:      http.MethodDelete,
		Path:        "/labels/{id}",
		Description: "Delete a label from its board and every card using it.",
		Params:      []ep.Param{idParam("label")},
	},
}

var memberEndpoints = []ep.Descriptor{
	{
		Name:        "trello_get_member",
		Title:       "Get Member",
		Category:    CategoryMembers,
		Method:      http.MethodGet,
		Path:        "/members/{id}",
		Description: "Get a member by ID or username. Use id=me for the token's owner.",
		Params: []ep.Param{
			ep.PathParam("id", "Member ID, username, or me"),
			fieldsParam("member"),
		},
	},
	{
		Name:     "trello_get_member_boards",
		Title:    "Get Member Boards",
		Category: CategoryMembers,
		Method:   http.MethodGet,
		Path:     "/members/{id}/boards",
		Description: `Get the boards a member belongs to.

USE WHEN: User asks "what boards do I have", "list my boards", or you need a board ID. Use id=me.`,
		Params: []ep.Param{
			ep.PathParam("id", "Member ID, username, or me"),
			ep.QueryParam("filter", ep.String, "Which boards to return").OneOf("all", "closed", "members", "open", "organization", "public", "starred"),
			fieldsParam("board"),
		},
	},
	{
		Name:        "trello_get_member_cards",
		Title:       "Get Member Cards",
		Category:    CategoryMembers,
		Method:      http.MethodGet,
		Path:        "/members/{id}/cards",
		Description: "Get the cards a member is assigned to. Use id=me for \"my cards\".",
		Params: []ep.Param{
			ep.PathParam("id", "Member ID, username, or me"),
			ep.QueryParam("filter", ep.String, "Which cards to return").OneOf("all", "closed", "none", "open", "visible"),
		},
	},
	{
		Name:        "trello_get_member_organizations",
		Title:       "Get Member Workspaces",
		Category:    CategoryMembers,
		Method:      http.MethodGet,
		Path:        "/members/{id}/organizations",
		Description: "Get the workspaces a member belongs to.",
		Params: []ep.Param{
			ep.PathParam("id", "Member ID, username, or me"),
			fieldsParam("organization"),
		},
	},
}

var actionEndpoints = []ep.Descriptor{
	{
		Name:        "trello_get_action",
		Title:       "Get Action",
		Category:    CategoryActions,
		Method:      http.MethodGet,
		Path:        "/actions/{id}",
		Description: "Get a single action (activity entry or comment).",
		Params:      []ep.Param{idParam("action"), fieldsParam("action")},
	},
	{
		Name:        "trello_update_comment",
		Title:       "Edit Comment",
		Category:    CategoryActions,
		Method:      http.MethodPut,
		Path:        "/actions/{id}/text",
		Description: "Edit the text of a comment. id is the comment action ID.",
		Params: []ep.Param{
			idParam("comment action"),
			ep.QueryParam("value", ep.String, "New comment text").Require(),
		},
	},
	{
		Name:        "trello_delete_action",
		Title:       "Delete Comment",
		Category:    CategoryActions,
		Method:      http.MethodDelete,
		Path:        "/actions/{id}",
		Description: "Delete a comment action. Only comments can be deleted.",
		Params:      []ep.Param{idParam("comment action")},
	},
}

var customFieldEndpoints = []ep.Descriptor{
	{
		Name:        "trello_create_custom_field",
		Title:       "Create Custom Field",
		Category:    CategoryCustomFields,
		Method:      http.MethodPost,
		Path:        "/customFields",
		Description: "Create a custom field definition on a board.",
		Params: []ep.Param{
			ep.BodyField("idModel", ep.String, "Board ID").Require(),
			ep.BodyField("modelType", ep.String, "Always board").OneOf("board").Require(),
			ep.BodyField("name", ep.String, "Field name").Require(),
			ep.BodyField("type", ep.String, "Field type").OneOf("checkbox", "date", "list", "number", "text").Require(),
			ep.BodyField("options", ep.Array, "Dropdown options for list fields"),
			ep.BodyField("pos", ep.String, "Position: top, bottom or a number"),
			ep.BodyField("display_cardFront", ep.Boolean, "Show on the card front"),
		},
	},
	{
		Name:        "trello_get_custom_field",
		Title:       "Get Custom Field",
		Category:    CategoryCustomFields,
		Method:      http.MethodGet,
		Path:        "/customFields/{id}",
		Description: "Get a custom field definition.",
		Params:      []ep.Param{idParam("custom field")},
	},
	{
		Name:        "trello_update_custom_field",
		Title:       "Update Custom Field",
		Category:    CategoryCustomFields,
		Method:      http.MethodPut,
		Path:        "/customFields/{id}",
		Description: "Rename or reposition a custom field definition.",
		Params: []ep.Param{
			idParam("custom field"),
			ep.BodyField("name", ep.String, "New name"),
			ep.BodyField("pos", ep.String, "Position: top, bottom or a number"),
			ep.BodyField("display/cardFront", ep.Boolean, "Show on the card front"),
		},
	},
	{
		Name:        "trello_delete_custom_field",
		Title:       "Delete Custom Field",
		Category:    CategoryCustomFields,
		Method:      http.MethodDelete,
		Path:        "/customFields/{id}",
		Description: "Delete a custom field definition and its values on every card.",
		Params:      []ep.Param{idParam("custom field")},
	},
	{
		Name:        "trello_get_custom_field_options",
		Title:       "Get Custom Field Options",
		Category:    CategoryCustomFields,
		Method:      http.MethodGet,
		Path:        "/customFields/{id}/options",
		Description: "Get the dropdown options of a list-type custom field.",
		Params:      []ep.Param{idParam("custom field")},
	},
	{
		Name:        "trello_add_custom_field_option",
		Title:       "Add Custom Field Option",
		Category:    CategoryCustomFields,
		Method:      http.MethodPost,
		Path:        "/customFields/{id}/options",
		Description: "Add a dropdown option to a list-type custom field.",
		Params: []ep.Param{
			idParam("custom field"),
			ep.BodyField("value", ep.Object, `Option value, e.g. {"text": "High"}`).Require(),
			ep.BodyField("color", ep.String, "Option color"),
			ep.BodyField("pos", ep.String, "Position: top, bottom or a number"),
		},
	},
}

var organizationEndpoints = []ep.Descriptor{
	{
		Name:        "trello_get_organization",
		Title:       "Get Workspace",
		Category:    CategoryOrganizations,
		Method:      http.MethodGet,
		Path:        "/organizations/{id}",
		Description: "Get a workspace (organization) by ID or name.",
		Params:      []ep.Param{ep.PathParam("id", "Workspace ID or name"), fieldsParam("organization")},
	},
	{
		Name:        "trello_get_organization_boards",
		Title:       "Get Workspace Boards",
		Category:    CategoryOrganizations,
		Method:      http.MethodGet,
		Path:        "/organizations/{id}/boards",
		Description: "Get the boards in a workspace.",
		Params: []ep.Param{
			ep.PathParam("id", "Workspace ID or name"),
			ep.QueryParam("filter", ep.String, "Which boards to return").OneOf("all", "open", "closed", "members", "organization", "public"),
			fieldsParam("board"),
		},
	},
}

var webhookEndpoints = []ep.Descriptor{
	{
		Name:        "trello_create_webhook",
		Title:       "Create Webhook",
		Category:    CategoryWebhooks,
		Method:      http.MethodPost,
		Path:        "/webhooks",
		Description: "Register a webhook that Trello calls when a board, list, card or member changes.",
		Params: []ep.Param{
			ep.QueryParam("callbackURL", ep.String, "HTTPS URL Trello will POST to").Require(),
			ep.QueryParam("idModel", ep.String, "ID of the model to watch").Require(),
			ep.QueryParam("description", ep.String, "Webhook description"),
			ep.QueryParam("active", ep.Boolean, "Whether the webhook is active"),
		},
	},
	{
		Name:        "trello_get_webhook",
		Title:       "Get Webhook",
		Category:    CategoryWebhooks,
		Method:      http.MethodGet,
		Path:        "/webhooks/{id}",
		Description: "Get a webhook by ID.",
		Params:      []ep.Param{idParam("webhook")},
	},
	{
		Name:        "trello_delete_webhook",
		Title:       "Delete Webhook",
		Category:    CategoryWebhooks,
		Method:      http.MethodDelete,
		Path:        "/webhooks/{id}",
		Description: "Delete a webhook.",
		Params:      []ep.Param{idParam("webhook")},
	},
}

var searchEndpoints = []ep.Descriptor{
	{
		Name:     "trello_search",
		Title:    "Search Trello",
		Category: CategorySearch,
		Method:   http.MethodGet,
		Path:     "/search",
		Description: `Search boards, cards, members and workspaces by text.

USE WHEN: User asks "find the card about X", "which board has Y", or you do not know an ID.

NOT FOR: Finding people by name (use trello_search_members).

PARAMETERS:
- query: Search text, supports Trello operators like board:, list:, label:, due: (required)
- modelTypes: Comma list of actions, boards, cards, members, organizations (default all)

RETURNS: Matching boards, cards, members and organizations.`,
		Params: []ep.Param{
			ep.QueryParam("query", ep.String, "Search text").Require(),
			ep.QueryParam("idBoards", ep.Array, "Restrict to these board IDs, or mine"),
			ep.QueryParam("idOrganizations", ep.Array, "Restrict to these workspace IDs"),
			ep.QueryParam("modelTypes", ep.Array, "Types to search"),
			ep.QueryParam("cards_limit", ep.Integer, "Maximum cards (1-1000)"),
			ep.QueryParam("boards_limit", ep.Integer, "Maximum boards (1-1000)"),
			ep.QueryParam("partial", ep.Boolean, "Match partial words"),
		},
	},
	{
		Name:        "trello_search_members",
		Title:       "Search Members",
		Category:    CategorySearch,
		Method:      http.MethodGet,
		Path:        "/search/members",
		Description: "Search for members by name, username or email.",
		Params: []ep.Param{
			ep.QueryParam("query", ep.String, "Search text").Require(),
			ep.QueryParam("limit", ep.Integer, "Maximum results (1-20)"),
			ep.QueryParam("idBoard", ep.String, "Restrict to members of this board"),
			ep.QueryParam("idOrganization", ep.String, "Restrict to members of this workspace"),
		},
	},
}
