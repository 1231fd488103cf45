package config

// DefaultFeeds returns the built-in technology feed list
func DefaultFeeds() []FeedConfig {
	return []FeedConfig{
		{Name: "Bitcoin Core", URL: "https://bitcoincore.org/en/releasesrss.xml"},
		{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index"},
		{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
		{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
		{Name: "Wired", URL: "https://www.wired.com/feed/category/technology/latest/rss"},
		{Name: "Engadget", URL: "https://www.engadget.com/rss.xml"},
		{Name: "CNET", URL: "https://www.cnet.com/rss/news/"},
		{Name: "ZDNet", URL: "https://www.zdnet.com/news/rss.xml"},
		{Name: "VentureBeat", URL: "https://venturebeat.com/feed/"},
		{Name: "Mashable", URL: "https://mashable.com/feeds/rss/all"},
		{Name: "Gizmodo", URL: "https://gizmodo.com/rss"},
		{Name: "Tecnoblog", URL: "https://tecnoblog.net/feed"},
		{Name: "CanalTech", URL: "https://feeds.feedburner.com/canaltech"},
		{Name: "Brazil Journal", URL: "https://www.braziljournal.com/feed"},
		{Name: "Silicon Canals", URL: "https://siliconcanals.com/feed"},
		{Name: "Euractiv", URL: "https://www.euractiv.com/section/digital/feed/"},
		{Name: "The European", URL: "https://the-european.eu/technology/feed/"},
		{Name: "Tech in Asia", URL: "https://www.techinasia.com/feed"},
		{Name: "The Diplomat", URL: "https://thediplomat.com/feed/"},
		{Name: "Nikkei Asia", URL: "https://asia.nikkei.com/RSS/Technology"},
		{Name: "iTnews Asia", URL: "https://www.itnews.asia/rss"},
		{Name: "The Times", URL: "https://www.thetimes.co.uk/technology/rss"},
		{Name: "The New York Times", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml"},
		{Name: "The Guardian", URL: "https://www.theguardian.com/technology/rss"},
		{Name: "Stacker.news", URL: "https://stacker.news/~tech/rss"},
	}
}
