package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "evcol9a2k1x0r3t",
			"name": "events",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_name",
					"name": "name",
					"type": "text",
					"required": true,
					"presentable": true,
					"system": false
				},
				{
					"id": "date_starts_at",
					"name": "starts_at",
					"type": "date",
					"required": true,
					"presentable": false,
					"system": false
				},
				{
					"id": "select_status",
					"name": "status",
					"type": "select",
					"required": false,
					"presentable": false,
					"system": false,
					"maxSelect": 1,
					"values": [
						"draft",
						"published",
						"started",
						"ended"
					]
				}
			],
			"indexes": [],
			"listRule": null,
			"viewRule": null,
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("evcol9a2k1x0r3t")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
