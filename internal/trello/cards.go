package trello

import (
	"net/http"

	ep "github.com/olgasafonova/trello-mcp-server/internal/endpoint"
)

var cardEndpoints = []ep.Descriptor{
	{
		Name:     "trello_create_card",
		Title:    "Create Card",
		Category: CategoryCards,
		Method:   http.MethodPost,
		Path:     "/cards",
		Description: `Create a new card in a list.

USE WHEN: User says "add a card", "create a task for X", "put X on the board".

NOT FOR: Adding a checklist item to an existing card (use trello_create_checkitem).

PARAMETERS:
- idList: List to create the card in (required; find it with trello_get_board_lists)
- name: Card title
- desc: Card description (Markdown)
- pos, due, idMembers, idLabels: Optional placement, due date and assignment

RETURNS: The created card with its id and url.`,
		Params: []ep.Param{
			ep.QueryParam("idList", ep.String, "ID of the list the card goes in").Require(),
			posParam,
			ep.QueryParam("due", ep.String, "Due date (ISO 8601)"),
			ep.QueryParam("start", ep.String, "Start date (ISO 8601)"),
			ep.QueryParam("dueComplete", ep.Boolean, "Mark the due date complete"),
			ep.QueryParam("idMembers", ep.Array, "Member IDs to assign"),
			ep.QueryParam("idLabels", ep.Array, "Label IDs to add"),
			ep.QueryParam("urlSource", ep.String, "URL to attach"),
			ep.QueryParam("idCardSource", ep.String, "Card ID to copy"),
			ep.BodyField("name", ep.String, "Card name"),
			ep.BodyField("desc", ep.String, "Card description"),
			ep.BodyField("idBoard", ep.String, "Board ID the list belongs to"),
		},
	},
	{
		Name:     "trello_get_card",
		Title:    "Get Card",
		Category: CategoryCards,
		Method:   http.MethodGet,
		Path:     "/cards/{id}",
		Description: `Get a single card by ID.

USE WHEN: User asks "show card X", "what's the status of this card", or you need a card's list, labels or due date.

PARAMETERS:
- id: Card ID or short link (required)
- attachments, checklists, members: Nested resources to include (optional)

RETURNS: Card object with name, desc, idList, labels, due and url.`,
		Params: []ep.Param{
			idParam("card"),
			fieldsParam("card"),
			ep.QueryParam("actions", ep.String, "Nested actions filter"),
			ep.QueryParam("attachments", ep.String, "true, false or cover"),
			ep.QueryParam("members", ep.Boolean, "Include members"),
			ep.QueryParam("checklists", ep.String, "Nested checklists").OneOf("all", "none"),
			ep.QueryParam("board", ep.Boolean, "Include the board"),
			ep.QueryParam("list", ep.Boolean, "Include the list"),
			ep.QueryParam("customFieldItems", ep.Boolean, "Include custom field values"),
		},
	},
	{
		Name:     "trello_update_card",
		Title:    "Update Card",
		Category: CategoryCards,
		Method:   http.MethodPut,
		Path:     "/cards/{id}",
		Description: `Update a card: rename, edit the description, move it, set dates or archive it.

USE WHEN: User says "rename card X", "move X to Done", "set the due date", "archive this card".

NOT FOR: Deleting a card (use trello_delete_card), commenting (use trello_add_card_comment).

PARAMETERS:
- id: Card ID (required)
- name, desc: New title or description
- idList, idBoard, pos: Move the card
- closed: true to archive

RETURNS: The updated card.`,
		Params: []ep.Param{
			idParam("card"),
			ep.QueryParam("idList", ep.String, "Move to this list"),
			ep.QueryParam("idBoard", ep.String, "Move to this board"),
			posParam,
			ep.QueryParam("closed", ep.Boolean, "Archive (true) or reopen (false)"),
			ep.QueryParam("due", ep.String, "Due date (ISO 8601), or null to clear"),
			ep.QueryParam("start", ep.String, "Start date (ISO 8601)"),
			ep.QueryParam("dueComplete", ep.Boolean, "Mark the due date complete"),
			ep.QueryParam("idMembers", ep.Array, "Replace assigned members"),
			ep.QueryParam("idLabels", ep.Array, "Replace labels"),
			ep.QueryParam("subscribed", ep.Boolean, "Watch the card"),
			ep.BodyField("name", ep.String, "New name"),
			ep.BodyField("desc", ep.String, "New description; an empty string clears it"),
		},
	},
	{
		Name:        "trello_delete_card",
		Title:       "Delete Card",
		Category:    CategoryCards,
		Method:      http.MethodDelete,
		Path:        "/cards/{id}",
		Description: "Permanently delete a card. This cannot be undone; prefer trello_update_card closed=true to archive.",
		Params:      []ep.Param{idParam("card")},
	},
	{
		Name:        "trello_get_card_actions",
		Title:       "Get Card Actions",
		Category:    CategoryCards,
		Method:      http.MethodGet,
		Path:        "/cards/{id}/actions",
		Description: "Get the history of a card. Use filter=commentCard to read its comments.",
		Params: []ep.Param{
			idParam("card"),
			actionFilterParam,
			limitParam,
		},
	},
	{
		Name:        "trello_get_card_attachments",
		Title:       "Get Card Attachments",
		Category:    CategoryCards,
		Method:      http.MethodGet,
		Path:        "/cards/{id}/attachments",
		Description: "Get the attachments of a card.",
		Params: []ep.Param{
			idParam("card"),
			fieldsParam("attachment"),
		},
	},
	{
		Name:        "trello_create_card_attachment",
		Title:       "Attach URL to Card",
		Category:    CategoryCards,
		Method:      http.MethodPost,
		Path:        "/cards/{id}/attachments",
		Description: "Attach a link to a card.",
		Params: []ep.Param{
			idParam("card"),
			ep.QueryParam("url", ep.String, "URL to attach").Require(),
			ep.QueryParam("name", ep.String, "Attachment name"),
			ep.QueryParam("setCover", ep.Boolean, "Use as the card cover"),
		},
	},
	{
		Name:        "trello_get_card_checklists",
		Title:       "Get Card Checklists",
		Category:    CategoryCards,
		Method:      http.MethodGet,
		Path:        "/cards/{id}/checklists",
		Description: "Get the checklists on a card, including their items.",
		Params: []ep.Param{
			idParam("card"),
			ep.QueryParam("checkItems", ep.String, "Items to include").OneOf("all", "none"),
		},
	},
	{
		Name:     "trello_add_card_comment",
		Title:    "Comment on Card",
		Category: CategoryCards,
		Method:   http.MethodPost,
		Path:     "/cards/{id}/actions/comments",
		Description: `Add a comment to a card.

USE WHEN: User says "comment on X", "leave a note on the card", "reply on card X".

NOT FOR: Editing the card description (use trello_update_card).`,
		Params: []ep.Param{
			idParam("card"),
			textParam,
		},
	},
	{
		Name:        "trello_add_card_label",
		Title:       "Add Label to Card",
		Category:    CategoryCards,
		Method:      http.MethodPost,
		Path:        "/cards/{id}/idLabels",
		Description: "Add an existing board label to a card.",
		Params: []ep.Param{
			idParam("card"),
			ep.QueryParam("value", ep.String, "Label ID").Require(),
		},
	},
	{
		Name:        "trello_remove_card_label",
		Title:       "Remove Label from Card",
		Category:    CategoryCards,
		Method:      http.MethodDelete,
		Path:        "/cards/{id}/idLabels/{idLabel}",
		Description: "Remove a label from a card. The label stays on the board.",
		Params: []ep.Param{
			idParam("card"),
			ep.PathParam("idLabel", "Label ID"),
		},
	},
	{
		Name:        "trello_add_card_member",
		Title:       "Assign Member to Card",
		Category:    CategoryCards,
		Method:      http.MethodPost,
		Path:        "/cards/{id}/idMembers",
		Description: "Assign a member to a card.",
		Params: []ep.Param{
			idParam("card"),
			ep.QueryParam("value", ep.String, "Member ID").Require(),
		},
	},
	{
		Name:        "trello_remove_card_member",
		Title:       "Unassign Member from Card",
		Category:    CategoryCards,
		Method:      http.MethodDelete,
		Path:        "/cards/{id}/idMembers/{idMember}",
		Description: "Remove a member from a card.",
		Params: []ep.Param{
			idParam("card"),
			ep.PathParam("idMember", "Member ID"),
		},
	},
	{
		Name:        "trello_get_card_custom_field_items",
		Title:       "Get Card Custom Field Values",
		Category:    CategoryCards,
		Method:      http.MethodGet,
		Path:        "/cards/{id}/customFieldItems",
		Description: "Get the custom field values set on a card.",
		Params:      []ep.Param{idParam("card")},
	},
	{
		Name:     "trello_update_card_custom_field",
		Title:    "Set Card Custom Field Value",
		Category: CategoryCards,
		Method:   http.MethodPut,
		Path:     "/cards/{idCard}/customField/{idCustomField}/item",
		Description: `Set or clear a custom field value on a card.

PARAMETERS:
- idCard, idCustomField: Required
- value: Object such as {"text": "..."}, {"number": "3"}, {"checked": "true"} or {"date": "..."}
- idValue: Option ID for dropdown fields

Sending neither value nor idValue clears the field.`,
		AlwaysSendBody: true,
		Params: []ep.Param{
			ep.PathParam("idCard", "Card ID"),
			ep.PathParam("idCustomField", "Custom field ID"),
			ep.BodyField("value", ep.Object, "Typed value object"),
			ep.BodyField("idValue", ep.String, "Dropdown option ID"),
		},
	},
	{
		Name:        "trello_update_card_checkitem",
		Title:       "Update Checklist Item on Card",
		Category:    CategoryCards,
		Method:      http.MethodPut,
		Path:        "/cards/{idCard}/checkItem/{idCheckItem}",
		Description: "Rename, tick or untick a checklist item on a card.",
		Params: []ep.Param{
			ep.PathParam("idCard", "Card ID"),
			ep.PathParam("idCheckItem", "Checklist item ID"),
			ep.QueryParam("name", ep.String, "New item text"),
			ep.QueryParam("state", ep.String, "Item state").OneOf("complete", "incomplete"),
			ep.QueryParam("idChecklist", ep.String, "Move to this checklist"),
			posParam,
		},
	},
}
