package tsemitter

// webSocketStreamRuntime is the support class emitted alongside clients that
// declare streaming endpoints. It buffers messages until a consumer attaches
// and decodes each frame through the endpoint's deserializer.
const webSocketStreamRuntime = `export class WebSocketStream<T> {
  private socket: WebSocket;
  private queue: T[] = [];
  private resolvers: ((value: IteratorResult<T>) => void)[] = [];
  private closed = false;

  constructor(
    url: string,
    private deserialize: (data: any) => T,
    headers: Record<string, string>,
    WebSocketImpl: typeof WebSocket,
  ) {
    const wsUrl = url.replace(/^http/, 'ws');
    const params = new URLSearchParams(headers);
    this.socket = new WebSocketImpl(params.size > 0 ? wsUrl + '#' + params.toString() : wsUrl);
    this.socket.onmessage = (event) => {
      const value = this.deserialize(JSON.parse(event.data));
      const resolver = this.resolvers.shift();
      if (resolver) {
        resolver({ value, done: false });
      } else {
        this.queue.push(value);
      }
    };
    this.socket.onclose = () => {
      this.closed = true;
      for (const resolver of this.resolvers.splice(0)) {
        resolver({ value: undefined as any, done: true });
      }
    };
  }

  send(value: any): void {
    this.socket.send(JSON.stringify(value));
  }

  close(): void {
    this.socket.close();
  }

  [Symbol.asyncIterator](): AsyncIterator<T> {
    return {
      next: (): Promise<IteratorResult<T>> => {
        const value = this.queue.shift();
        if (value !== undefined) {
          return Promise.resolve({ value, done: false });
        }
        if (this.closed) {
          return Promise.resolve({ value: undefined as any, done: true });
        }
        return new Promise((resolve) => this.resolvers.push(resolve));
      },
    };
  }
}
`
