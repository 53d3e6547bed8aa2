package logctx

import (
	"context"
	"f1timing/internal/global"
	"slices"
)

// Returns a child context whose tag list ends with newTag.
// The parent's list is copied, siblings never see each other's tags.
func AppendCtxTag(ctx context.Context, newTag string) (newCtx context.Context) {
	tags := append(slices.Clone(GetTagList(ctx)), newTag)
	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Tag list carried by ctx, broadest first. Empty when none was set.
func GetTagList(ctx context.Context) (tags []string) {
	tags, _ = ctx.Value(global.LogTagsKey).([]string)
	if tags == nil {
		tags = []string{}
	}
	return
}
