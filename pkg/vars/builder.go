package vars

import (
	"fmt"

	"github.com/angryss/idp-cli/pkg/model"
)

// FromBlueprint builds the variable space for a blueprint:
//
//	blueprint.id / .name / .description
//	resources                      — the full resource array
//	resources[i].id / .name / .description
//	resources[i].resource_type.*   — id, name, category
//	resources[i].cloud_provider.*  — id, name, display_name
//	resources[i].configuration     — the whole map, plus each entry
//	resources[i].cloud_specific_properties.* — each property
//	supported_cloud_providers      — the full provider array
func FromBlueprint(bp *model.Blueprint) *Context {
	ctx := NewContext()

	ctx.Insert("blueprint.id", bp.Id.String())
	ctx.Insert("blueprint.name", bp.Name)
	if bp.Description != "" {
		ctx.Insert("blueprint.description", bp.Description)
	}

	resources := make([]any, len(bp.Resources))
	for i, res := range bp.Resources {
		resources[i] = blueprintResourceValue(res)
	}
	ctx.Insert("resources", resources)

	for i, res := range bp.Resources {
		prefix := fmt.Sprintf("resources[%d]", i)

		ctx.Insert(prefix+".id", res.Id.String())
		ctx.Insert(prefix+".name", res.Name)
		if res.Description != "" {
			ctx.Insert(prefix+".description", res.Description)
		}

		ctx.Insert(prefix+".resource_type.id", res.ResourceType.Id.String())
		ctx.Insert(prefix+".resource_type.name", res.ResourceType.Name)
		ctx.Insert(prefix+".resource_type.category", res.ResourceType.Category)

		ctx.Insert(prefix+".cloud_provider.id", res.CloudProvider.Id.String())
		ctx.Insert(prefix+".cloud_provider.name", res.CloudProvider.Name)
		ctx.Insert(prefix+".cloud_provider.display_name", res.CloudProvider.DisplayName)

		ctx.Insert(prefix+".configuration", mapValue(res.Configuration))
		for key, value := range res.Configuration {
			ctx.Insert(prefix+".configuration."+key, value)
		}

		for key, value := range res.CloudSpecificProperties {
			ctx.Insert(prefix+".cloud_specific_properties."+key, value)
		}
	}

	providers := make([]any, len(bp.SupportedCloudProviders))
	for i, cp := range bp.SupportedCloudProviders {
		providers[i] = providerValue(cp)
	}
	ctx.Insert("supported_cloud_providers", providers)

	return ctx
}

// FromStack builds the variable space for a stack. The layout mirrors
// FromBlueprint with "stack." metadata and a "stack_resources" array; when
// the stack embeds its source blueprint, that blueprint's metadata is exposed
// under "blueprint." as well.
func FromStack(st *model.Stack) *Context {
	ctx := NewContext()

	ctx.Insert("stack.id", st.Id.String())
	ctx.Insert("stack.name", st.Name)
	if st.Description != "" {
		ctx.Insert("stack.description", st.Description)
	}
	ctx.Insert("stack.cloud_name", st.CloudName)
	ctx.Insert("stack.stack_type", st.StackType)

	resources := make([]any, len(st.StackResources))
	for i, res := range st.StackResources {
		resources[i] = stackResourceValue(res)
	}
	ctx.Insert("stack_resources", resources)

	for i, res := range st.StackResources {
		prefix := fmt.Sprintf("stack_resources[%d]", i)

		ctx.Insert(prefix+".id", res.Id.String())
		ctx.Insert(prefix+".name", res.Name)
		if res.Description != "" {
			ctx.Insert(prefix+".description", res.Description)
		}

		ctx.Insert(prefix+".resource_type.id", res.ResourceType.Id.String())
		ctx.Insert(prefix+".resource_type.name", res.ResourceType.Name)
		ctx.Insert(prefix+".resource_type.category", res.ResourceType.Category)

		ctx.Insert(prefix+".cloud_provider.id", res.CloudProvider.Id.String())
		ctx.Insert(prefix+".cloud_provider.name", res.CloudProvider.Name)
		ctx.Insert(prefix+".cloud_provider.display_name", res.CloudProvider.DisplayName)

		ctx.Insert(prefix+".configuration", mapValue(res.Configuration))
		for key, value := range res.Configuration {
			ctx.Insert(prefix+".configuration."+key, value)
		}
	}

	if st.Blueprint != nil {
		ctx.Insert("blueprint.id", st.Blueprint.Id.String())
		ctx.Insert("blueprint.name", st.Blueprint.Name)
		if st.Blueprint.Description != "" {
			ctx.Insert("blueprint.description", st.Blueprint.Description)
		}
	}

	return ctx
}

func blueprintResourceValue(res model.BlueprintResource) map[string]any {
	obj := map[string]any{
		"id":   res.Id.String(),
		"name": res.Name,
		"resource_type": map[string]any{
			"id":       res.ResourceType.Id.String(),
			"name":     res.ResourceType.Name,
			"category": res.ResourceType.Category,
		},
		"cloud_provider":            providerValue(res.CloudProvider),
		"configuration":             mapValue(res.Configuration),
		"cloud_specific_properties": mapValue(res.CloudSpecificProperties),
	}
	if res.Description != "" {
		obj["description"] = res.Description
	}
	return obj
}

func stackResourceValue(res model.StackResource) map[string]any {
	obj := map[string]any{
		"id":   res.Id.String(),
		"name": res.Name,
		"resource_type": map[string]any{
			"id":       res.ResourceType.Id.String(),
			"name":     res.ResourceType.Name,
			"category": res.ResourceType.Category,
		},
		"cloud_provider": providerValue(res.CloudProvider),
		"configuration":  mapValue(res.Configuration),
	}
	if res.Description != "" {
		obj["description"] = res.Description
	}
	return obj
}

func providerValue(cp model.CloudProvider) map[string]any {
	return map[string]any{
		"id":           cp.Id.String(),
		"name":         cp.Name,
		"display_name": cp.DisplayName,
	}
}

// mapValue copies m into a plain map[string]any so the context never shares
// storage with the caller's domain object.
func mapValue(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
