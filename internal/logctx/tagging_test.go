package logctx

import (
	"context"
	"f1timing/internal/global"
	"reflect"
	"testing"
)

func TestTagging(t *testing.T) {
	base := AppendCtxTag(context.Background(), global.NSProxy)
	child := AppendCtxTag(base, global.NSSession)
	sibling := AppendCtxTag(base, global.NSUpstream)

	if got := GetTagList(child); !reflect.DeepEqual(got, []string{global.NSProxy, global.NSSession}) {
		t.Fatalf("unexpected child tags %v", got)
	}
	if got := GetTagList(sibling); !reflect.DeepEqual(got, []string{global.NSProxy, global.NSUpstream}) {
		t.Fatalf("sibling tags leaked from child: %v", got)
	}
	if got := GetTagList(base); !reflect.DeepEqual(got, []string{global.NSProxy}) {
		t.Fatalf("parent tags changed by children: %v", got)
	}
	if got := GetTagList(context.Background()); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil tags, got %v", got)
	}
	if got := GetTagList(context.WithValue(context.Background(), global.LogTagsKey, "nope")); len(got) != 0 {
		t.Fatalf("expected empty tags for wrong type, got %v", got)
	}
}
