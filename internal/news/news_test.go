package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name      string
		headlines []string
		n         int
		want      []string
	}{
		{
			name:      "frequency then first appearance",
			headlines: []string{"삼성전자 반도체 호황", "반도체 수출 증가", "삼성전자 반도체 투자"},
			n:         3,
			want:      []string{"반도체", "삼성전자", "호황"},
		},
		{
			name:      "stopwords single runes and latin dropped",
			headlines: []string{"[속보] 오늘 코스피 3% 상승 및 AI 관련주 강세", "코스피 2500 돌파"},
			n:         5,
			want:      []string{"코스피", "상승", "관련주", "강세", "2500"},
		},
		{
			name:      "empty",
			headlines: nil,
			n:         5,
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.headlines, tt.n)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

const searchPage = `<ul class="list_news">
<li><div class="news_wrap api_ani_send"><a class="news_tit">반도체 수출 증가</a></div></li>
<li><div class="news_wrap api_ani_send"><a class="news_tit"> 반도체 업황 회복 </a></div></li>
<li><div class="news_wrap api_ani_send"><span>no title</span></div></li>
<li><div class="news_wrap api_ani_send"><a class="news_tit">삼성전자 실적</a></div></li>
<li><div class="news_wrap api_ani_send"><a class="news_tit">네번째</a></div></li>
<li><div class="news_wrap api_ani_send"><a class="news_tit">다섯번째</a></div></li>
<li><div class="news_wrap api_ani_send"><a class="news_tit">여섯번째</a></div></li>
</ul>`

func TestClient(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		if query == "없음" {
			_, _ = w.Write([]byte("<html></html>"))
			return
		}
		_, _ = w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL

	hs, err := c.Headlines(context.Background(), "반도체")
	if err != nil {
		t.Fatal(err)
	}
	if query != "반도체" {
		t.Errorf("query not forwarded: %q", query)
	}
	if len(hs) != 5 || hs[1] != "반도체 업황 회복" || hs[4] != "다섯번째" {
		t.Errorf("unexpected headlines %q", hs)
	}

	kws, err := c.Keywords(context.Background(), "반도체")
	if err != nil || len(kws) == 0 || kws[0] != "반도체" {
		t.Errorf("unexpected keywords %v (%v)", kws, err)
	}

	if _, err := c.Keywords(context.Background(), "없음"); !errors.Is(err, ErrNoHeadlines) {
		t.Errorf("expected ErrNoHeadlines, got %v", err)
	}
}
